// Package khata provides the bookkeeping of a single LPG shop. It is designed
// to be local-first and auditable: the whole book lives in a handful of JSON
// documents that a shopkeeper can read, back up and version.
//
// The core functionalities include:
//   - Inventory: purchases are recorded in numbered batches, and sales consume
//     the stock of the oldest batches first.
//   - Sales and credit: cash sales are paid into the shop account, credit sales
//     book pending credits that customers pay back, oldest first.
//   - Finance: a few cash accounts (shop, bank, home, equity) move with sales,
//     payments, expenses, transfers and deposits.
//   - Reports: the dashboard, stock movements, customer statements and a
//     consistency check of the whole book.
//
// Every change to a Book is atomic: it either applies completely or leaves the
// book untouched and returns an error.
//
// This package serves as the foundational logic for the `khata` command-line
// tool.
package khata

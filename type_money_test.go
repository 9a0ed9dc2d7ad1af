package khata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount   Money    `json:"amount"`
		Quantity Quantity `json:"quantity"`
	}{M(1500.5), Q(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":1500.5,"quantity":3}`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"99.90"`), &m), "quoted amounts are accepted")
	assertMoney(t, 0, m.Sub(M(99.9)))
}

func TestMoney_Format(t *testing.T) {
	assert.Equal(t, "1234.50", M(1234.5).Plain())
	assert.Contains(t, M(1234.5).Format("USD"), "1,234.50")
	assert.Equal(t, "33.3", M(1).Percent(M(3)).String())
	assert.True(t, M(1).Percent(Money{}).IsZero())
}

func TestParseMoneyAndQuantity(t *testing.T) {
	m, err := ParseMoney("12.5")
	require.NoError(t, err)
	assert.True(t, m.Equal(M(12.5)))
	_, err = ParseMoney("twelve")
	assert.Error(t, err)

	q, err := ParseQuantity("2")
	require.NoError(t, err)
	assert.True(t, q.Equal(Q(2)))
	assert.True(t, Q(2).Min(Q(1)).Equal(Q(1)))
}

func TestItem(t *testing.T) {
	testCases := []struct {
		in       string
		want     ItemType
		hasError bool
	}{
		{"bn", BN, false},
		{" Other ", Other, false},
		{"XYZ", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseItemType(tc.in)
			if tc.hasError {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Equal(t, "OTHER_Pipe", NewItem(Other, " Pipe").Key())
	assert.Equal(t, "SN", NewItem(SN, "ignored").Key())
	assert.Negative(t, compareItems(Item{Type: C}, Item{Type: ABN}))
	assert.Negative(t, compareItems(Item{Type: ABN}, NewItem(Other, "Burner")))
}

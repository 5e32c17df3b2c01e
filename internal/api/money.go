package api

import (
	"encoding/json"

	"github.com/mmynk/receiptsplit/internal/models"
)

// Amounts on the wire always carry two fractional digits.

func (r Receipt) MarshalJSON() ([]byte, error) {
	type plain Receipt
	return json.Marshal(struct {
		plain
		Subtotal models.NullMoney `json:"subtotal"`
		Tax      models.NullMoney `json:"tax"`
		Tip      models.NullMoney `json:"tip"`
		Total    models.NullMoney `json:"total"`
	}{
		plain(r),
		models.NullMoney(r.Subtotal), models.NullMoney(r.Tax),
		models.NullMoney(r.Tip), models.NullMoney(r.Total),
	})
}

func (s Share) MarshalJSON() ([]byte, error) {
	type plain Share
	return json.Marshal(struct {
		plain
		Items      models.Money `json:"items"`
		Tax        models.Money `json:"tax"`
		Tip        models.Money `json:"tip"`
		Adjustment models.Money `json:"adjustment"`
		Total      models.Money `json:"total"`
	}{
		plain(s),
		models.Money(s.Items), models.Money(s.Tax), models.Money(s.Tip),
		models.Money(s.Adjustment), models.Money(s.Total),
	})
}

func (r CalculateSplitResponse) MarshalJSON() ([]byte, error) {
	type plain CalculateSplitResponse
	return json.Marshal(struct {
		plain
		Totals map[string]models.Money `json:"totals"`
	}{plain(r), models.MoneyMap(r.Totals)})
}

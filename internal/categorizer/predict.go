package categorizer

import (
	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// PredictBatch predicts a category for every record, in input order.
func PredictBatch(m *Model, records []model.Transaction) ([]string, error) {
	if !m.ready() {
		return nil, common.ErrNotTrained
	}

	descriptions := make([]string, len(records))
	for i, txn := range records {
		descriptions[i] = txn.Description()
	}
	return m.Predict(descriptions)
}

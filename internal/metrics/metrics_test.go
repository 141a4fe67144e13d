package metrics

import (
	"testing"

	"github.com/AlexZinkM/shardwallet/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOperation(t *testing.T) {
	ok := OperationsTotal.WithLabelValues(OpVerify, ResultOK)
	failed := OperationsTotal.WithLabelValues(OpVerify, "DECRYPTION_FAILED")
	okBefore := testutil.ToFloat64(ok)
	failedBefore := testutil.ToFloat64(failed)

	RecordOperation(OpVerify, nil)
	RecordOperation(OpVerify, model.ErrDecryptionFailed)
	RecordOperation(OpVerify, model.ErrDecryptionFailed)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+2, testutil.ToFloat64(failed))
}

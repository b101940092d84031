package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyResultSucceeded(t *testing.T) {
	assert.True(t, (&VerifyResult{Status: TransactionSuccess}).Succeeded())
	assert.False(t, (&VerifyResult{Status: TransactionFailed}).Succeeded())
	assert.False(t, (&VerifyResult{Status: TransactionAbandoned}).Succeeded())
	assert.False(t, (&VerifyResult{Status: TransactionPending}).Succeeded())
}

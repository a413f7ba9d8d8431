package contract

import (
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// transactionName strips the "Contract:" namespace from the invoked function.
func transactionName(ctx contractapi.TransactionContextInterface) string {
	fn, _ := ctx.GetStub().GetFunctionAndParameters()
	if i := strings.LastIndex(fn, ":"); i >= 0 {
		return fn[i+1:]
	}
	return fn
}

func (c *LandRegistryContract) beforeTransaction(ctx contractapi.TransactionContextInterface) error {
	name := transactionName(ctx)
	logger.Debugf("Chaincode Call: %s (tx %s)", name, ctx.GetStub().GetTxID())
	c.metrics.ObserveStarted(name)
	return nil
}

// afterTransaction only runs when the transaction function returned no error.
func (c *LandRegistryContract) afterTransaction(ctx contractapi.TransactionContextInterface, _ interface{}) error {
	c.metrics.ObserveSucceeded(transactionName(ctx))
	return nil
}

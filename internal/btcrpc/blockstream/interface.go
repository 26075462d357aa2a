package blockstream

import "context"

// Transaction is the subset of the esplora transaction payload the payment
// check needs.
type Transaction struct {
	Txid   string `json:"txid"`
	Status struct {
		Confirmed   bool  `json:"confirmed"`
		BlockHeight int64 `json:"block_height"`
	} `json:"status"`
	Vout []Vout `json:"vout"`
}

// Vout is one transaction output. Value is in satoshis.
type Vout struct {
	ScriptpubkeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

type IBlockStream interface {
	// GetAddressTxs returns the most recent transactions touching an address,
	// newest first.
	GetAddressTxs(ctx context.Context, address string) ([]Transaction, error)
}

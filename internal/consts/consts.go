package consts

const (
	// Payment methods accepted by the order API.
	MethodBitcoin   = "bitcoin"
	MethodUSDTSol   = "usdt_sol"
	MethodUSDTERC20 = "usdt_erc20"
	MethodUSDTTRC20 = "usdt_trc20"

	// Deposit pool keys. Several USDT transport variants share one pool.
	PoolKeyBTC = "btc"
	PoolKeyETH = "eth"
	PoolKeySol = "sol"
	PoolKeyTRX = "trx"

	BTC_DECIMALS  = 8
	USDT_DECIMALS = 6

	// Crypto amounts quoted to the buyer are rounded to this precision.
	PayAmountPrecision = 8

	// Minimum length of a base58 Solana address the buyer may supply.
	MinSolanaAddressLen = 20
)

// MethodPoolKeys maps a payment method to the deposit pool it draws from.
var MethodPoolKeys = map[string]string{
	MethodBitcoin:   PoolKeyBTC,
	MethodUSDTSol:   PoolKeySol,
	MethodUSDTERC20: PoolKeyETH,
	MethodUSDTTRC20: PoolKeyTRX,
}

// CoingeckoIDs maps a payment method to the CoinGecko asset id used for quoting.
var CoingeckoIDs = map[string]string{
	MethodBitcoin:   "bitcoin",
	MethodUSDTSol:   "tether",
	MethodUSDTERC20: "tether",
	MethodUSDTTRC20: "tether",
}

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/voltpass/vpc-backend/internal/consts"
	"github.com/voltpass/vpc-backend/internal/types/environments"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Sqlite      SqliteConfig
	Order       OrderConfig
	Reconcile   ReconcileConfig
	Pricing     PricingConfig
	Bitcoin     BitcoinConfig
	Ethereum    EthereumConfig
	Solana      SolanaConfig
	Alert       AlertConfig

	// DepositAddresses holds the configured deposit addresses per pool key.
	DepositAddresses map[string][]string
}

type ApiServerConfig struct {
	Port           string
	AllowedOrigins string
}

type SqliteConfig struct {
	Path string
}

type OrderConfig struct {
	TTLMinutes     int
	MinPurchaseUSD float64

	// NoTimeoutMethods lists payment methods exempt from TTL-based expiry.
	NoTimeoutMethods []string
}

type ReconcileConfig struct {
	IntervalSeconds     int
	TickTimeoutSeconds  int
	MaxDisburseAttempts int
}

type PricingConfig struct {
	TokenPriceUSD   float64
	PromoBonuses    map[string]float64
	CoingeckoAPIURL string
}

type BitcoinConfig struct {
	BlockstreamAPIURL string
}

type EthereumConfig struct {
	RPCEndpoint      string
	USDTContractAddr string
}

type SolanaConfig struct {
	RPCEndpoint      string
	VPCMintAddr      string
	WalletPrivateKey string
}

type AlertConfig struct {
	WebhookURL string
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// will not override env variables that already exist
	godotenv.Load(".env." + env)

	return &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			Port:           envVarWithDefault("PORT", "8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Sqlite: SqliteConfig{
			Path: envVarWithDefault("SQLITE_PATH", "data/orders.db"),
		},
		Order: OrderConfig{
			TTLMinutes:       envVarAtoiWithDefault("ORDER_TTL_MINUTES", 30),
			MinPurchaseUSD:   envVarFloatWithDefault("MIN_PURCHASE_USD", 20),
			NoTimeoutMethods: envVarCSV("NO_TIMEOUT_METHODS", consts.MethodBitcoin),
		},
		Reconcile: ReconcileConfig{
			IntervalSeconds:     envVarAtoiWithDefault("RECONCILE_INTERVAL_SECONDS", 10),
			TickTimeoutSeconds:  envVarAtoiWithDefault("TICK_TIMEOUT_SECONDS", 60),
			MaxDisburseAttempts: envVarAtoiWithDefault("MAX_DISBURSE_ATTEMPTS", 5),
		},
		Pricing: PricingConfig{
			TokenPriceUSD:   envVarFloatWithDefault("VPC_PRICE_USD", 0.1),
			PromoBonuses:    envVarPromoMap("PROMO_BONUSES"),
			CoingeckoAPIURL: envVarWithDefault("COINGECKO_API_URL", "https://api.coingecko.com/api/v3"),
		},
		Bitcoin: BitcoinConfig{
			BlockstreamAPIURL: envVarWithDefault("BTC_BLOCKSTREAM_API_URL", "https://blockstream.info/api"),
		},
		Ethereum: EthereumConfig{
			RPCEndpoint:      os.Getenv("ETH_RPC_ENDPOINT"),
			USDTContractAddr: envVarWithDefault("USDT_CONTRACT_ADDR", "0xdAC17F958D2ee523a2206206994597C13D831ec7"),
		},
		Solana: SolanaConfig{
			RPCEndpoint:      envVarWithDefault("SOLANA_RPC_ENDPOINT", "https://api.mainnet-beta.solana.com"),
			VPCMintAddr:      os.Getenv("VPC_MINT_ADDR"),
			WalletPrivateKey: os.Getenv("SOLANA_WALLET_PRIVATE_KEY"),
		},
		Alert: AlertConfig{
			WebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
		},
		DepositAddresses: map[string][]string{
			consts.PoolKeyBTC: envVarCSV("BTC_DEPOSIT_ADDRESSES"),
			consts.PoolKeyETH: envVarCSV("ETH_DEPOSIT_ADDRESSES"),
			consts.PoolKeySol: envVarCSV("SOL_DEPOSIT_ADDRESSES"),
			consts.PoolKeyTRX: envVarCSV("TRX_DEPOSIT_ADDRESSES"),
		},
	}
}

// NoTimeout reports whether the method is exempt from TTL-based expiry.
func (c *AppConfig) NoTimeout(method string) bool {
	for _, m := range c.Order.NoTimeoutMethods {
		if m == method {
			return true
		}
	}
	return false
}

func envVarWithDefault(envName, fallback string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return fallback
}

func envVarAtoiWithDefault(envName string, fallback int) int {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func envVarFloatWithDefault(envName string, fallback float64) float64 {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envVarCSV(envName string, fallback ...string) []string {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	parts := []string{}
	for _, p := range strings.Split(valueStr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// envVarPromoMap parses "CODE:percent,CODE:percent" pairs.
func envVarPromoMap(envName string) map[string]float64 {
	bonuses := map[string]float64{}
	for _, pair := range envVarCSV(envName) {
		code, pctStr, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		pct, err := strconv.ParseFloat(pctStr, 64)
		if err != nil {
			continue
		}
		bonuses[strings.TrimSpace(code)] = pct
	}
	return bonuses
}

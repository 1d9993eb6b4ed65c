package config

// DefaultSymbols is the catalog tracked when the config file lists none.
// Prices are quoted in BRL on both sources.
func DefaultSymbols() []SymbolConfig {
	return []SymbolConfig{
		{Symbol: "btc", Name: "Bitcoin", CoinGeckoID: "bitcoin", BinancePair: "BTCBRL"},
		{Symbol: "eth", Name: "Ethereum", CoinGeckoID: "ethereum", BinancePair: "ETHBRL"},
		{Symbol: "xrp", Name: "Ripple", CoinGeckoID: "ripple", BinancePair: "XRPBRL"},
		{Symbol: "bnb", Name: "BNB", CoinGeckoID: "binancecoin", BinancePair: "BNBBRL"},
		{Symbol: "ada", Name: "Cardano", CoinGeckoID: "cardano", BinancePair: "ADABRL"},
		{Symbol: "sol", Name: "Solana", CoinGeckoID: "solana", BinancePair: "SOLBRL"},
		{Symbol: "doge", Name: "Dogecoin", CoinGeckoID: "dogecoin", BinancePair: "DOGEBRL"},
		{Symbol: "dot", Name: "Polkadot", CoinGeckoID: "polkadot", BinancePair: "DOTBRL"},
		{Symbol: "matic", Name: "Polygon", CoinGeckoID: "polygon", BinancePair: "MATICBRL"},
		{Symbol: "ltc", Name: "Litecoin", CoinGeckoID: "litecoin", BinancePair: "LTCBRL"},
		{Symbol: "avax", Name: "Avalanche", CoinGeckoID: "avalanche-2", BinancePair: "AVAXBRL"},
		{Symbol: "shib", Name: "Shiba Inu", CoinGeckoID: "shiba-inu", BinancePair: "SHIBBRL"},
	}
}

package model

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	// DerivedETH is the token's price in ETH as tracked by the indexed dataset.
	DerivedETH string `json:"derived_eth,omitempty"`
}

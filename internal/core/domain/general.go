package domain

import (
	"time"
)

// NumConfirmFees is the number of confirmation-target buckets in the bitcoin
// fee table.
const NumConfirmFees = 6

var (
	// FallbackBitcoinServers are used when the general info carries no
	// bitcoin server.
	FallbackBitcoinServers = []string{
		"tcp://obelisk.airbitz.co:9091",
		"stratum://stratum-az-wusa.airbitz.co:50001",
		"stratum://stratum-az-wjapan.airbitz.co:50001",
		"stratum://stratum-az-neuro.airbitz.co:50001",
	}
	// TestnetBitcoinServers always replace the cached list on testnet.
	TestnetBitcoinServers = []string{
		"tcp://obelisk-testnet.airbitz.co:9091",
	}
	// FallbackSyncServer is used when the general info carries no sync server.
	FallbackSyncServer = "https://git.sync.airbitz.co/repos"
)

// GeneralInfo is the server-supplied document with the settings Airbitz
// adjusts without shipping a new app.
type GeneralInfo struct {
	BitcoinFees    BitcoinFees `json:"minersFees2"`
	AirbitzFees    AirbitzFees `json:"feesAirBitz"`
	BitcoinServers []string    `json:"obeliskServers"`
	SyncServers    []string    `json:"syncServers"`
}

// NewGeneralInfo returns the document with all the built-in defaults. Decoding
// a server document on top of it keeps the defaults of missing fields.
func NewGeneralInfo() GeneralInfo {
	return GeneralInfo{
		BitcoinFees: NewBitcoinFees(),
		AirbitzFees: NewAirbitzFees(),
	}
}

// BitcoinFees is the static miner fee table, in satoshi per kB.
type BitcoinFees struct {
	ConfirmFees1         int64   `json:"confirmFees1"`
	ConfirmFees2         int64   `json:"confirmFees2"`
	ConfirmFees3         int64   `json:"confirmFees3"`
	ConfirmFees4         int64   `json:"confirmFees4"`
	ConfirmFees5         int64   `json:"confirmFees5"`
	ConfirmFees6         int64   `json:"confirmFees6"`
	HighFeeBlock         int64   `json:"highFeeBlock"`
	StandardFeeBlockHigh int64   `json:"standardFeeBlockHigh"`
	StandardFeeBlockLow  int64   `json:"standardFeeBlockLow"`
	LowFeeBlock          int64   `json:"lowFeeBlock"`
	TargetFeePercentage  float64 `json:"targetFeePercentage"`
}

func NewBitcoinFees() BitcoinFees {
	return BitcoinFees{
		ConfirmFees1:         73210,
		ConfirmFees2:         62110,
		ConfirmFees3:         51098,
		ConfirmFees4:         46001,
		ConfirmFees5:         31002,
		ConfirmFees6:         26002,
		HighFeeBlock:         1,
		StandardFeeBlockHigh: 2,
		StandardFeeBlockLow:  3,
		LowFeeBlock:          4,
		TargetFeePercentage:  0.25,
	}
}

// ConfirmFees returns the table indexed by block target; index 0 is unused.
func (f BitcoinFees) ConfirmFees() [NumConfirmFees + 1]int64 {
	return [NumConfirmFees + 1]int64{
		0,
		f.ConfirmFees1, f.ConfirmFees2, f.ConfirmFees3,
		f.ConfirmFees4, f.ConfirmFees5, f.ConfirmFees6,
	}
}

// AirbitzFees is the Airbitz service fee schedule.
type AirbitzFees struct {
	Addresses          []string `json:"addresses"`
	IncomingRate       float64  `json:"incomingRate"`
	IncomingMax        int64    `json:"incomingMax"`
	IncomingMin        int64    `json:"incomingMin"`
	OutgoingPercentage float64  `json:"percentage"`
	OutgoingMax        int64    `json:"maxSatoshi"`
	OutgoingMin        int64    `json:"minSatoshi"`
	NoFeeMinSatoshi    int64    `json:"noFeeMinSatoshi"`
	SendMin            int64    `json:"sendMin"`
	SendPeriod         int64    `json:"sendPeriod"`
	SendPayee          string   `json:"sendPayee"`
	SendCategory       string   `json:"sendCategory"`
}

func NewAirbitzFees() AirbitzFees {
	return AirbitzFees{
		SendMin:      4000,
		SendPeriod:   7 * 24 * 60 * 60,
		SendPayee:    "Airbitz",
		SendCategory: "Expense:Fees",
	}
}

// BitcoinFeeInfo is the effective fee table handed to fee-quoting code. Its
// ConfirmFees are non-increasing with the block target.
type BitcoinFeeInfo struct {
	ConfirmFees          [NumConfirmFees + 1]int64
	HighFeeBlock         int64
	StandardFeeBlockHigh int64
	StandardFeeBlockLow  int64
	LowFeeBlock          int64
	TargetFeePercentage  float64
}

// AirbitzFeeInfo is the effective Airbitz service fee schedule. Rates are
// fractions, not percentages.
type AirbitzFeeInfo struct {
	Addresses       []string
	IncomingRate    float64
	IncomingMin     int64
	IncomingMax     int64
	OutgoingRate    float64
	OutgoingMin     int64
	OutgoingMax     int64
	NoFeeMinSatoshi int64
	SendMin         int64
	SendPeriod      time.Duration
	SendPayee       string
	SendCategory    string
}

// ServerScore is the locally learned reputation of a network endpoint.
type ServerScore struct {
	ServerURL string `json:"serverUrl"`
	Score     int64  `json:"serverScore"`
}

// EstimateFees is the fee table derived from live network estimates, in
// satoshi per kB. Zero means no estimate for that target.
type EstimateFees struct {
	ConfirmFees1 int64 `json:"confirmFees1"`
	ConfirmFees2 int64 `json:"confirmFees2"`
	ConfirmFees3 int64 `json:"confirmFees3"`
	ConfirmFees4 int64 `json:"confirmFees4"`
	ConfirmFees5 int64 `json:"confirmFees5"`
	ConfirmFees6 int64 `json:"confirmFees6"`
}

// ConfirmFees returns the table indexed by block target; index 0 is unused.
func (f EstimateFees) ConfirmFees() [NumConfirmFees + 1]int64 {
	return [NumConfirmFees + 1]int64{
		0,
		f.ConfirmFees1, f.ConfirmFees2, f.ConfirmFees3,
		f.ConfirmFees4, f.ConfirmFees5, f.ConfirmFees6,
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// HTTPListeningPortKey is the port where the HTTP interface will listen on
	HTTPListeningPortKey = "HTTP_LISTENING_PORT"
	// VaultProgramIDKey is the program owning vault states and deriving vault
	// addresses
	VaultProgramIDKey = "VAULT_PROGRAM_ID"
	// EscrowProgramIDKey is the program owning escrow records and deriving
	// escrow addresses
	EscrowProgramIDKey = "ESCROW_PROGRAM_ID"
	// RentLamportsPerByteYearKey is the storage cost of one byte for one year
	RentLamportsPerByteYearKey = "RENT_LAMPORTS_PER_BYTE_YEAR"
	// RentExemptionThresholdKey is the number of years of rent an account must
	// hold to remain allocated
	RentExemptionThresholdKey = "RENT_EXEMPTION_THRESHOLD"
	// AuthMaxClockSkewKey is the max distance in seconds between the timestamp
	// of a signed request and the daemon's clock
	AuthMaxClockSkewKey = "AUTH_MAX_CLOCK_SKEW"
	// EnableFaucetKey enables the airdrop and mint endpoints
	EnableFaucetKey = "ENABLE_FAUCET"
	// OperatorPubkeyKey is the key allowed to manage webhooks. Webhooks can't
	// be managed if not set
	OperatorPubkeyKey = "OPERATOR_PUBKEY"
	// WebhookTimeoutKey is the timeout in seconds of webhook requests
	WebhookTimeoutKey = "WEBHOOK_TIMEOUT"
	// WebhookRateLimitKey is the max number of webhook requests per second
	WebhookRateLimitKey = "WEBHOOK_RATE_LIMIT"

	DbLocation = "db"

	DBBadger   = "badger"
	DBInMemory = "inmemory"

	defaultVaultProgramID  = "4vrVwqf5txbavZ5viVRbTsPS8rTB986v3PWBtwbnLrXE"
	defaultEscrowProgramID = "G12PpJUib62fdSGLveZxVTZnr9wnmF2bXsfY7TFPDAxX"
)

var (
	vip            = viper.New()
	defaultDatadir = btcutil.AppDataDir("custody-daemon", false)

	flagsByKey = map[string]string{
		DatadirKey:           "datadir",
		LogLevelKey:          "log-level",
		HTTPListeningPortKey: "port",
		DBTypeKey:            "db-type",
	}
)

// BindFlags binds the given flags to the related config keys, flags take
// precedence over env vars.
func BindFlags(flags *pflag.FlagSet) error {
	for key, name := range flagsByKey {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := vip.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

func InitConfig() error {
	vip.SetEnvPrefix("CUSTODY")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(HTTPListeningPortKey, 9945)
	vip.SetDefault(VaultProgramIDKey, defaultVaultProgramID)
	vip.SetDefault(EscrowProgramIDKey, defaultEscrowProgramID)
	vip.SetDefault(RentLamportsPerByteYearKey, domain.DefaultLamportsPerByteYear)
	vip.SetDefault(RentExemptionThresholdKey, domain.DefaultExemptionThreshold.String())
	vip.SetDefault(AuthMaxClockSkewKey, 300)
	vip.SetDefault(EnableFaucetKey, false)
	vip.SetDefault(WebhookTimeoutKey, 15)
	vip.SetDefault(WebhookRateLimitKey, 50)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDbDir returns the directory of the persistent stores, empty for the
// inmemory db type.
func GetDbDir() string {
	if GetString(DBTypeKey) == DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetVaultProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(GetString(VaultProgramIDKey))
}

func GetEscrowProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(GetString(EscrowProgramIDKey))
}

func GetRent() domain.Rent {
	threshold, _ := decimal.NewFromString(GetString(RentExemptionThresholdKey))
	return domain.Rent{
		LamportsPerByteYear: uint64(GetInt(RentLamportsPerByteYearKey)),
		ExemptionThreshold:  threshold,
	}
}

// GetOperator returns the key allowed to manage webhooks, if any.
func GetOperator() (solana.PublicKey, bool) {
	operator := GetString(OperatorPubkeyKey)
	if len(operator) <= 0 {
		return solana.PublicKey{}, false
	}
	return solana.MustPublicKeyFromBase58(operator), true
}

func GetWebhookTimeout() time.Duration {
	return time.Duration(GetInt(WebhookTimeoutKey)) * time.Second
}

func GetAuthMaxClockSkew() time.Duration {
	return time.Duration(GetInt(AuthMaxClockSkewKey)) * time.Second
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBBadger && dbType != DBInMemory {
		return fmt.Errorf(
			"%s must be one of %s, %s", DBTypeKey, DBBadger, DBInMemory,
		)
	}

	for _, key := range []string{VaultProgramIDKey, EscrowProgramIDKey} {
		if _, err := solana.PublicKeyFromBase58(GetString(key)); err != nil {
			return fmt.Errorf("%s must be a valid base58 key: %s", key, err)
		}
	}
	if GetString(VaultProgramIDKey) == GetString(EscrowProgramIDKey) {
		return fmt.Errorf(
			"%s and %s must differ", VaultProgramIDKey, EscrowProgramIDKey,
		)
	}

	if operator := GetString(OperatorPubkeyKey); len(operator) > 0 {
		if _, err := solana.PublicKeyFromBase58(operator); err != nil {
			return fmt.Errorf("%s must be a valid base58 key: %s", OperatorPubkeyKey, err)
		}
	}

	if GetInt(RentLamportsPerByteYearKey) <= 0 {
		return fmt.Errorf("%s must be positive", RentLamportsPerByteYearKey)
	}
	threshold, err := decimal.NewFromString(GetString(RentExemptionThresholdKey))
	if err != nil {
		return fmt.Errorf("%s must be a number: %s", RentExemptionThresholdKey, err)
	}
	if threshold.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be equal or greater than 1", RentExemptionThresholdKey)
	}

	if GetInt(AuthMaxClockSkewKey) <= 0 {
		return fmt.Errorf("%s must be positive", AuthMaxClockSkewKey)
	}
	if GetInt(WebhookTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be positive", WebhookTimeoutKey)
	}
	if GetInt(WebhookRateLimitKey) <= 0 {
		return fmt.Errorf("%s must be positive", WebhookRateLimitKey)
	}

	port := GetInt(HTTPListeningPortKey)
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be a valid port", HTTPListeningPortKey)
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) == DBInMemory {
		return nil
	}
	return makeDirectoryIfNotExists(GetDbDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

package driver

import (
	"github.com/code-payments/vault-driver/pkg/config"
	"github.com/code-payments/vault-driver/pkg/config/env"
	"github.com/code-payments/vault-driver/pkg/config/memory"
	"github.com/code-payments/vault-driver/pkg/config/wrapper"
	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/solana/nativevault"
)

const (
	envConfigPrefix = "VAULT_DRIVER_"

	ProgramIdConfigEnvName = envConfigPrefix + "PROGRAM_ID"
	defaultProgramId       = ""

	EscrowNamespaceConfigEnvName = envConfigPrefix + "ESCROW_NAMESPACE"
	defaultEscrowNamespace       = nativevault.DefaultEscrowNamespace

	AirdropLamportsConfigEnvName = envConfigPrefix + "AIRDROP_LAMPORTS"
	defaultAirdropLamports       = 2 * solana.LamportsPerSol

	DepositLamportsConfigEnvName = envConfigPrefix + "DEPOSIT_LAMPORTS"
	defaultDepositLamports       = 1

	// A zero amount disables the transfer phase
	TransferLamportsConfigEnvName = envConfigPrefix + "TRANSFER_LAMPORTS"
	defaultTransferLamports       = 0

	SkipFundingConfigEnvName = envConfigPrefix + "SKIP_FUNDING"
	defaultSkipFunding       = false
)

type conf struct {
	programId        config.String
	escrowNamespace  config.String
	airdropLamports  config.Uint64
	depositLamports  config.Uint64
	transferLamports config.Uint64
	skipFunding      config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			programId:        env.NewStringConfig(ProgramIdConfigEnvName, defaultProgramId),
			escrowNamespace:  env.NewStringConfig(EscrowNamespaceConfigEnvName, defaultEscrowNamespace),
			airdropLamports:  env.NewUint64Config(AirdropLamportsConfigEnvName, defaultAirdropLamports),
			depositLamports:  env.NewUint64Config(DepositLamportsConfigEnvName, defaultDepositLamports),
			transferLamports: env.NewUint64Config(TransferLamportsConfigEnvName, defaultTransferLamports),
			skipFunding:      env.NewBoolConfig(SkipFundingConfigEnvName, defaultSkipFunding),
		}
	}
}

type testOverrides struct {
	programId        string
	escrowNamespace  string
	depositLamports  uint64
	transferLamports uint64
	skipFunding      bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			programId:        wrapper.NewStringConfig(memory.NewConfig(overrides.programId), defaultProgramId),
			escrowNamespace:  wrapper.NewStringConfig(memory.NewConfig(overrides.escrowNamespace), defaultEscrowNamespace),
			airdropLamports:  wrapper.NewUint64Config(memory.NewConfig(uint64(defaultAirdropLamports)), defaultAirdropLamports),
			depositLamports:  wrapper.NewUint64Config(memory.NewConfig(overrides.depositLamports), defaultDepositLamports),
			transferLamports: wrapper.NewUint64Config(memory.NewConfig(overrides.transferLamports), defaultTransferLamports),
			skipFunding:      wrapper.NewBoolConfig(memory.NewConfig(overrides.skipFunding), defaultSkipFunding),
		}
	}
}

// Axis: Mundis execution core.
//
// This is the main entry point for Axis, a standalone execution engine
// that runs native program instructions against a local account store
// and reports the resulting accounts-delta hash.
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/mundisnetwork/axis-sub000/pkg/accounts"
	"github.com/mundisnetwork/axis-sub000/pkg/programs/memo"
	"github.com/mundisnetwork/axis-sub000/pkg/programs/screg"
	"github.com/mundisnetwork/axis-sub000/pkg/programs/token"
	"github.com/mundisnetwork/axis-sub000/pkg/programs/vault"
	"github.com/mundisnetwork/axis-sub000/pkg/runtime"
	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "dev"
	BuildTime = "unknown"
)

// Configuration flags
var (
	configFile  = flag.String("config", "/root/.config/axis/config.json", "Path to JSON configuration file")
	dataDir     = flag.String("data-dir", "", "Account store directory (\":memory:\" for in-memory)")
	batchFile   = flag.String("batch", "", "Path to JSON instruction batch to execute")
	snapshotIn  = flag.String("snapshot-in", "", "Snapshot file to import before execution")
	snapshotOut = flag.String("snapshot-out", "", "Snapshot file to export the account store to")
	showLogs    = flag.Bool("logs", false, "Print program logs for each instruction")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// Config represents the JSON configuration file structure.
type Config struct {
	General GeneralConfig `json:"general"`
	Output  OutputConfig  `json:"output"`
}

// GeneralConfig holds general application settings.
type GeneralConfig struct {
	DataDir string `json:"data_dir"`
}

// OutputConfig holds result reporting settings.
type OutputConfig struct {
	ProgramLogs bool `json:"program_logs"`
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DataDir: ":memory:",
		},
		Output: OutputConfig{
			ProgramLogs: false,
		},
	}
}

// loadConfig loads configuration from the specified JSON file.
// If the file doesn't exist, it returns the default configuration.
// CLI flags override config file values when explicitly set.
func loadConfig(configPath string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	log.Printf("Loaded configuration from %s", configPath)
	return cfg, nil
}

// applyConfigWithCLIOverrides applies config values and lets CLI flags
// override them when explicitly set on the command line.
func applyConfigWithCLIOverrides(cfg Config) {
	flagSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagSet[f.Name] = true
	})

	if !flagSet["data-dir"] {
		*dataDir = cfg.General.DataDir
	}
	if !flagSet["logs"] {
		*showLogs = cfg.Output.ProgramLogs
	}
}

// BatchAccount seeds one account before execution.
type BatchAccount struct {
	Pubkey     string `json:"pubkey"`
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data_base64"`
	Executable bool   `json:"executable"`
}

// BatchAccountMeta names one account position of an instruction.
type BatchAccountMeta struct {
	Pubkey   string `json:"pubkey"`
	Signer   bool   `json:"signer"`
	Writable bool   `json:"writable"`
}

// BatchInstruction is one instruction of a batch.
type BatchInstruction struct {
	ProgramID string             `json:"program_id"`
	Accounts  []BatchAccountMeta `json:"accounts"`
	Data      string             `json:"data_base64"`
}

// Batch is the JSON input format: accounts to seed, then instructions to
// run in order.
type Batch struct {
	Accounts     []BatchAccount     `json:"accounts"`
	Instructions []BatchInstruction `json:"instructions"`
}

func loadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	return &batch, nil
}

func seedAccounts(db accounts.AccountsDB, seeds []BatchAccount) error {
	for _, seed := range seeds {
		pubkey, err := types.PubkeyFromBase58(seed.Pubkey)
		if err != nil {
			return fmt.Errorf("invalid account pubkey %q: %w", seed.Pubkey, err)
		}
		owner := types.SystemProgramID
		if seed.Owner != "" {
			if owner, err = types.PubkeyFromBase58(seed.Owner); err != nil {
				return fmt.Errorf("invalid owner %q: %w", seed.Owner, err)
			}
		}
		var data []byte
		if seed.Data != "" {
			if data, err = base64.StdEncoding.DecodeString(seed.Data); err != nil {
				return fmt.Errorf("invalid account data for %s: %w", seed.Pubkey, err)
			}
		}
		acc := types.NewAccountWithData(types.Lamports(seed.Lamports), data, owner)
		acc.Executable = seed.Executable
		if err := db.SetAccount(pubkey, acc); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", seed.Pubkey, err)
		}
	}
	return nil
}

func decodeInstruction(bi BatchInstruction) (types.Instruction, error) {
	programID, err := types.PubkeyFromBase58(bi.ProgramID)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("invalid program id %q: %w", bi.ProgramID, err)
	}
	metas := make([]types.AccountMeta, len(bi.Accounts))
	for i, m := range bi.Accounts {
		pubkey, err := types.PubkeyFromBase58(m.Pubkey)
		if err != nil {
			return types.Instruction{}, fmt.Errorf("invalid account pubkey %q: %w", m.Pubkey, err)
		}
		metas[i] = types.AccountMeta{Pubkey: pubkey, IsSigner: m.Signer, IsWritable: m.Writable}
	}
	var data []byte
	if bi.Data != "" {
		if data, err = base64.StdEncoding.DecodeString(bi.Data); err != nil {
			return types.Instruction{}, fmt.Errorf("invalid instruction data: %w", err)
		}
	}
	return types.NewInstruction(programID, metas, data), nil
}

// runBatch executes the batch against the store and returns the set of
// pubkeys touched by writable account positions.
func runBatch(registry *runtime.Registry, db accounts.AccountsDB, batch *Batch) (map[types.Pubkey]bool, error) {
	touched := make(map[types.Pubkey]bool)
	for i, bi := range batch.Instructions {
		ix, err := decodeInstruction(bi)
		if err != nil {
			return touched, fmt.Errorf("instruction %d: %w", i, err)
		}

		ctx, execErr := registry.ProcessInstruction(db, ix)
		if *showLogs && ctx != nil {
			for _, line := range ctx.Logs() {
				fmt.Printf("  [%d] %s\n", i, line)
			}
		}
		if execErr != nil {
			return touched, fmt.Errorf("instruction %d (%s): %w", i, ix.ProgramID, execErr)
		}

		for _, meta := range ix.Accounts {
			if meta.IsWritable {
				touched[meta.Pubkey] = true
			}
		}
		fmt.Printf("instruction %d: ok (%s)\n", i, ix.ProgramID)
	}
	return touched, nil
}

// deltaRefs loads the post-execution state of every touched account,
// sorted by pubkey for a deterministic hash.
func deltaRefs(db accounts.AccountsDB, touched map[types.Pubkey]bool) ([]types.AccountRef, error) {
	refs := make([]types.AccountRef, 0, len(touched))
	for pubkey := range touched {
		acc, err := db.GetAccount(pubkey)
		if err != nil {
			return nil, fmt.Errorf("failed to load account %s: %w", pubkey, err)
		}
		if acc == nil {
			continue
		}
		refs = append(refs, types.AccountRef{Pubkey: pubkey, Account: acc})
	}
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Pubkey[:]) < string(refs[j].Pubkey[:])
	})
	return refs, nil
}

func openStore(dir string) (accounts.AccountsDB, error) {
	if dir == ":memory:" {
		return accounts.NewMemoryDB(), nil
	}
	return accounts.NewBadgerDB(dir)
}

func run() error {
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	applyConfigWithCLIOverrides(cfg)

	db, err := openStore(*dataDir)
	if err != nil {
		return fmt.Errorf("failed to open account store: %w", err)
	}
	defer db.Close()

	if *snapshotIn != "" {
		count, err := accounts.LoadSnapshot(*snapshotIn, db)
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		log.Printf("Restored %d accounts from %s", count, *snapshotIn)
	}

	registry := runtime.NewRegistry()
	registry.Register(token.New())
	registry.Register(vault.New())
	registry.Register(memo.New())
	registry.Register(screg.New())

	if *batchFile == "" {
		return fmt.Errorf("no batch file given (use -batch)")
	}
	batch, err := loadBatch(*batchFile)
	if err != nil {
		return err
	}
	if err := seedAccounts(db, batch.Accounts); err != nil {
		return err
	}

	touched, err := runBatch(registry, db, batch)
	if err != nil {
		return err
	}

	refs, err := deltaRefs(db, touched)
	if err != nil {
		return err
	}
	deltaHash := accounts.ComputeAccountsDeltaHash(refs)
	fmt.Printf("accounts: %d touched, %d stored\n", len(refs), db.GetAccountsCount())
	fmt.Printf("accounts delta hash: %s\n", deltaHash)

	if *snapshotOut != "" {
		// Scan yields ascending pubkey order, so the exported file is
		// deterministic for a given store state.
		all := make([]types.AccountRef, 0, db.GetAccountsCount())
		err := db.Scan(func(pubkey types.Pubkey, acc *types.Account) error {
			all = append(all, types.AccountRef{Pubkey: pubkey, Account: acc})
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to scan account store: %w", err)
		}
		if err := accounts.WriteSnapshot(*snapshotOut, all); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		log.Printf("Exported %d accounts to %s", len(all), *snapshotOut)
	}
	return nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("axis %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
		return
	}

	if err := run(); err != nil {
		log.Fatalf("axis: %v", err)
	}
}

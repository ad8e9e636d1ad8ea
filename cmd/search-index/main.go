package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"counties/internal/country"
	"counties/internal/logger"
	"counties/internal/migrate"
	"counties/internal/spotlight"
	"counties/internal/store"
	"counties/internal/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile     string
	countryJSON string
	flagsDir    string
	timeout     time.Duration
)

// 文档注释：把数据集写入 Postgres 搜索索引
// 背景：多实例部署时由发布流程执行一次，服务启动后的后台索引只做补齐；写入为 upsert，可重复执行。
// 约束：--country 为空时使用内置数据集；--flags-dir 下存在 <县名>.png 时一并写入缩略图。
var rootCmd = &cobra.Command{
	Use:          "search-index",
	Short:        "Write the county dataset into the Postgres search index",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		_ = godotenv.Load(envFile)
		if !cmd.Flags().Changed("country") {
			countryJSON = utils.EnvString("COUNTRY_JSON", countryJSON)
		}
		if !cmd.Flags().Changed("flags-dir") {
			flagsDir = utils.EnvString("FLAGS_DIR", filepath.Join(utils.EnvString("DATA_DIR", "data"), "flags"))
		}
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env", ".env", "env file with PG_* settings")
	rootCmd.Flags().StringVarP(&countryJSON, "country", "c", "", "country dataset JSON (default: bundled United Kingdom)")
	rootCmd.Flags().StringVar(&flagsDir, "flags-dir", "", "directory of <county>.png thumbnails (default: $FLAGS_DIR or data/flags)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall indexing timeout")
}

func run(parent context.Context) error {
	l := logger.Setup()
	c := country.UnitedKingdom()
	if countryJSON != "" {
		var err error
		if c, err = country.Load(countryJSON); err != nil {
			return fmt.Errorf("load country %s: %w", countryJSON, err)
		}
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	st := store.AttachDB(db)
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	begin := time.Now()
	if err := spotlight.NewIndexer(st, flagsDir).IndexRegionsSync(ctx, c.Regions); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	n, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	l.Info("search_index_done", "country", c.Name, "rows", n, "flags_dir", flagsDir, "duration_ms", time.Since(begin).Milliseconds())
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

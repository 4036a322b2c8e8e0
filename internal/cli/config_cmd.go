package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/wire"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  "Show the configuration after merging files, PULSE_* environment variables and defaults. Secrets are masked.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := wire.Config()

		source := cfg.File
		if source == "" {
			source = "(defaults only)"
		}
		fmt.Printf("Config file: %s\n\n", source)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		rows := [][2]string{
			{"db_path", cfg.DBPath},
			{"principal", cfg.Principal},
			{"org.timezone", cfg.Org.Timezone},
			{"org.language", cfg.Org.Language},
			{"oracle.provider", cfg.Oracle.Provider},
			{"oracle.model", cfg.Oracle.Model},
			{"oracle.api_key", mask(cfg.Oracle.APIKey)},
			{"oracle.base_url", cfg.Oracle.BaseURL},
			{"oracle.max_retries", fmt.Sprint(cfg.Oracle.MaxRetries)},
			{"notify.provider", cfg.Notify.Provider},
			{"notify.endpoint", cfg.Notify.Endpoint},
			{"notify.token", mask(cfg.Notify.Token)},
			{"notify.from", cfg.Notify.From},
			{"scheduler.hour", fmt.Sprint(cfg.Scheduler.Hour)},
			{"scheduler.interval", cfg.Scheduler.Interval.String()},
			{"scheduler.concurrency", fmt.Sprint(cfg.Scheduler.Concurrency)},
			{"scheduler.lock_file", cfg.Scheduler.LockFile},
			{"timeouts.oracle", cfg.Timeouts.Oracle.String()},
			{"timeouts.notify", cfg.Timeouts.Notify.String()},
			{"timeouts.storage", cfg.Timeouts.Storage.String()},
			{"log.level", cfg.Log.Level},
			{"log.format", cfg.Log.Format},
			{"log.file", cfg.Log.File},
		}
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\n", r[0], orDash(r[1]))
		}
		return w.Flush()
	},
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "…" + secret[len(secret)-2:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ConfigCmd returns the config command with all subcommands attached.
func ConfigCmd() *cobra.Command {
	configCmd.AddCommand(configShowCmd)
	return configCmd
}

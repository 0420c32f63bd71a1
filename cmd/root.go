package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration, used when no .stmtx.yaml is found.
const defaultConfigYAML = `
statement:
  BANK_MUSCAT:
    account_patterns:
      - '- Current Account\s+(\d{16})'
    pages: "3"
    # 15 suits statements printed with taller rows
    row_tolerance: 5
  BANK_DHOFAR:
    account_patterns:
      - 'Account No:\s+(\d{14})'
    pages: all
    row_tolerance: 5
  OAB:
    account_patterns:
      - 'Account:\s*(\d+)'
    pages: all
    snap_tolerance: 3
export:
  formats: [xlsx, csv]
  header: false
  output: .
server:
  port: "8080"
`

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "stmtx [filename]",
		Short: "Extract transaction tables from bank statement PDFs",
		Long: `stmtx reads bank statement PDFs from Bank Muscat, Bank Dhofar and OAB,
normalizes their transaction tables and writes them as xlsx, csv or json.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				viper.Set("target", args[0])
				return handler(extractCmd, []string{})
			}
			return cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.stmtx.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringP("bank", "b", "", "statement layout: BANK_MUSCAT, BANK_DHOFAR or OAB")
	viper.BindPFlag("bank", rootCmd.PersistentFlags().Lookup("bank"))
}

func initLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

func initConfig() {
	// A .env next to the binary may carry DATABASE_URL and friends.
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".stmtx")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := loadDefaults(); err != nil {
		fmt.Printf("Error loading embedded configuration: %v\n", err)
		os.Exit(1)
	}

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadDefaults reads the embedded configuration. A config file merged on
// top only needs the keys it changes.
func loadDefaults() error {
	viper.SetConfigType("yaml")
	return viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML))
}

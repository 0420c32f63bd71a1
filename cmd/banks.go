package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List supported banks and their configured patterns",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tPAGES\tACCOUNT PATTERNS")
		for _, b := range common.Banks {
			key := "statement." + string(b)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b, b.DisplayName(),
				viper.GetString(key+".pages"),
				strings.Join(viper.GetStringSlice(key+".account_patterns"), " | "))
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(banksCmd)
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greenwatch/greenwatch/internal/gmt"
)

var machinesAll bool

// machinesCmd represents the machines command
var machinesCmd = &cobra.Command{
	Use:   "machines",
	Short: "List measurement machines",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient()
		machines, err := client.ListMachines(cmd.Context())
		if err != nil {
			return fmt.Errorf("error fetching machines: %v", err)
		}

		if !machinesAll {
			active := make([]gmt.Machine, 0, len(machines))
			for _, machine := range machines {
				if machine.Active {
					active = append(active, machine)
				}
			}
			machines = active
		}

		if len(machines) == 0 {
			fmt.Println("No machines returned.")
			return nil
		}

		if viper.GetBool("json") {
			PrintJSON(machines)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tACTIVE\tNAME")
		for _, machine := range machines {
			fmt.Fprintf(w, "%v\t%t\t%s\n", machine.ID, machine.Active, machine.Name)
		}
		w.Flush()

		return nil
	},
}

func init() {
	machinesCmd.Flags().BoolVar(&machinesAll, "all", false, "Include inactive machines")

	rootCmd.AddCommand(machinesCmd)
}

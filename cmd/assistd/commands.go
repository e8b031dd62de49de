package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"assistd/internal/sysinfo"
	"assistd/pkg/types"
)

func newModelsCmd() *cobra.Command {
	models := &cobra.Command{
		Use:   "models",
		Short: "Inspect the model catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries and their driver state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			orch := buildOrchestrator(cfg, newLogger())
			defer orch.Close()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tRAM MB\tCAPS\tSTATE")
			for _, m := range orch.ListModels().Models {
				state := m.State
				if state == "" {
					state = "unloaded"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					m.ID, m.Name, m.RAMRequirementMB, strings.Join(m.Capabilities, ","), state)
			}
			return w.Flush()
		},
	}

	sel := &cobra.Command{
		Use:   "select",
		Short: "Show which model the selector would pick",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			orch := buildOrchestrator(cfg, newLogger())
			defer orch.Close()

			domain, _ := cmd.Flags().GetString("domain")
			complexity, _ := cmd.Flags().GetString("complexity")
			accuracy, _ := cmd.Flags().GetBool("prefer-accuracy")
			force, _ := cmd.Flags().GetString("force")
			resp, err := orch.SelectModel(types.SelectRequest{
				Domain:         domain,
				Complexity:     complexity,
				PreferAccuracy: accuracy,
				ForceID:        force,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	sel.Flags().String("domain", "", "Request domain, e.g. medical")
	sel.Flags().String("complexity", "medium", "Query complexity: low|medium|high")
	sel.Flags().Bool("prefer-accuracy", false, "Prefer the largest fitting model")
	sel.Flags().String("force", "", "Force a specific model id")

	models.AddCommand(list, sel)
	return models
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Print the device resource snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := sysinfo.Probe()
			if err != nil {
				return err
			}
			fmt.Printf("RAM:         %d MB total, %d MB available\n", snap.TotalRAMMB, snap.AvailableRAMMB)
			fmt.Printf("CPU:         %d physical / %d logical cores @ %.0f MHz\n", snap.CPUPhysical, snap.CPULogical, snap.CPUMHz)
			fmt.Printf("Disk free:   %d MB\n", snap.DiskFreeMB)
			if snap.Accelerator {
				fmt.Printf("Accelerator: yes (%d MB)\n", snap.AcceleratorMB)
			} else {
				fmt.Println("Accelerator: no")
			}
			fmt.Printf("Quality:     %s\n", snap.Quality())
			return nil
		},
	}
}

func newTestgenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testgen <prompt>",
		Short: "Run one generation end to end and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			orch := buildOrchestrator(cfg, newLogger())
			defer orch.Close()

			domain, _ := cmd.Flags().GetString("domain")
			language, _ := cmd.Flags().GetString("language")
			ans, err := orch.Answer(context.Background(), types.AnswerRequest{
				Prompt:   strings.Join(args, " "),
				Domain:   domain,
				Language: language,
			})
			if err != nil {
				return err
			}
			fmt.Println(ans.Text)
			fmt.Fprintf(os.Stderr, "source=%s driver=%s class=%s elapsed=%dms cache_hit=%v\n",
				ans.Source, ans.Driver, ans.Class, ans.ElapsedMS, ans.CacheHit)
			return nil
		},
	}
	cmd.Flags().String("domain", "", "Request domain, e.g. medical")
	cmd.Flags().String("language", "", "Response language tag")
	return cmd
}

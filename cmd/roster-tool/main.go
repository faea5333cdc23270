// cmd/roster-tool/main.go
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"mergington-activities/pkg/registry"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "roster-tool",
		Short: "Inspect and edit activity seed files",
		Long: `Inspect and edit the seed document the activities API loads at startup.

An empty --path uses the seed compiled into the binary.

Examples:
  roster-tool validate --path configs/activities.json
  roster-tool show
  roster-tool export --out configs/activities.json
  roster-tool add --path configs/activities.json --name "Robotics" --max 16
  roster-tool update --path configs/activities.json --name "Robotics" --field schedule --value "Mondays, 4 PM"
`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&seedPath, "path", "", "Path to seed file (default: embedded seed)")

	cmd.AddCommand(
		validateCmd(&seedPath),
		showCmd(&seedPath),
		exportCmd(&seedPath),
		addCmd(&seedPath),
		updateCmd(&seedPath),
	)
	return cmd
}

func validateCmd(seedPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a seed file against the schema and registry rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*seedPath)
			if err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed: %d activities.\n", len(reg.Activities))
			return nil
		},
	}
}

func showCmd(seedPath *string) *cobra.Command {
	var withParticipants bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print activities and their rosters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*seedPath)
			if err != nil {
				return err
			}

			activities := append([]registry.Activity(nil), reg.Activities...)
			sort.Slice(activities, func(i, j int) bool { return activities[i].Name < activities[j].Name })

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSCHEDULE\tENROLLED\tMAX")
			for _, a := range activities {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", a.Name, a.Schedule, len(a.Participants), a.MaxParticipants)
				if withParticipants {
					for _, email := range a.Participants {
						fmt.Fprintf(tw, "  - %s\t\t\t\n", email)
					}
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&withParticipants, "participants", false, "List participant emails")
	return cmd
}

func exportCmd(seedPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the validated seed document to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*seedPath)
			if err != nil {
				return err
			}
			if err := registry.Save(reg, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d activities to %s\n", len(reg.Activities), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Destination file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func addCmd(seedPath *string) *cobra.Command {
	var activity registry.Activity

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity to a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if *seedPath == "" {
				return fmt.Errorf("--path is required for add")
			}
			reg, err := loadOrCreate(*seedPath)
			if err != nil {
				return err
			}

			activity.Participants = []string{}
			reg.Activities = append(reg.Activities, activity)
			if err := registry.Validate(reg); err != nil {
				return err
			}
			if err := registry.Save(reg, *seedPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", activity.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&activity.Name, "name", "", "Activity name")
	cmd.Flags().StringVar(&activity.Description, "description", "", "Description")
	cmd.Flags().StringVar(&activity.Schedule, "schedule", "", "Schedule")
	cmd.Flags().IntVar(&activity.MaxParticipants, "max", 0, "Maximum participants")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func updateCmd(seedPath *string) *cobra.Command {
	var name, field, value string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change one field of an activity in a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if *seedPath == "" {
				return fmt.Errorf("--path is required for update")
			}
			reg, err := registry.LoadRegistry(*seedPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}

			idx := -1
			for i := range reg.Activities {
				if reg.Activities[i].Name == name {
					idx = i
					break
				}
			}
			if idx < 0 {
				return fmt.Errorf("activity %s not found", name)
			}

			a := &reg.Activities[idx]
			switch field {
			case "description":
				a.Description = value
			case "schedule":
				a.Schedule = value
			case "max_participants":
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("invalid max_participants value: %w", err)
				}
				a.MaxParticipants = n
			default:
				return fmt.Errorf("unknown field: %s", field)
			}

			if err := registry.Validate(reg); err != nil {
				return err
			}
			if err := registry.Save(reg, *seedPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", name, field, value)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Activity name")
	cmd.Flags().StringVar(&field, "field", "", "Field to update (description, schedule, max_participants)")
	cmd.Flags().StringVar(&value, "value", "", "New value")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func loadOrCreate(path string) (*registry.ActivityRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if err == nil {
		return reg, nil
	}
	if os.IsNotExist(err) {
		return &registry.ActivityRegistry{Version: "1.0.0", Activities: []registry.Activity{}}, nil
	}
	return nil, fmt.Errorf("failed to load registry: %w", err)
}

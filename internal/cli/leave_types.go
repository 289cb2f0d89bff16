package cli

import (
	"fmt"

	"leave-portal/internal/domain"
	"leave-portal/internal/leavetype"

	"github.com/spf13/cobra"
)

func newLeaveTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leave-types",
		Aliases: []string{"types"},
		Short:   "List and administer leave types",
	}
	cmd.AddCommand(
		newLeaveTypesListCmd(),
		newLeaveTypesCreateCmd(),
		newLeaveTypesUpdateCmd(),
		newLeaveTypesDeleteCmd(),
	)
	return cmd
}

func newLeaveTypesListCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leave types",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := portal.LeaveTypes.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list leave types: %s", Describe(err))
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s  %-24s  %-10s  %8s  %s\n", "ID", "NAME", "CATEGORY", "MAX/YEAR", "ACTIVE")
			fmt.Fprintf(w, "%-6s  %-24s  %-10s  %8s  %s\n", "--", "----", "--------", "--------", "------")
			for _, lt := range types {
				if activeOnly && !lt.IsActive {
					continue
				}
				maxDays := "-"
				if lt.MaxDaysPerYear != nil {
					maxDays = fmt.Sprintf("%d", *lt.MaxDaysPerYear)
				}
				fmt.Fprintf(w, "%-6s  %-24s  %-10s  %8s  %t\n",
					lt.ID, truncate(lt.Name, 24), lt.Category, maxDays, lt.IsActive)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only active types")
	return cmd
}

// leaveTypeFlags collects the form fields. Pointer fields are only sent when
// their flag was given.
type leaveTypeFlags struct {
	req              leavetype.LeaveTypeRequest
	maxDays          int
	active           bool
	requiresApproval bool
}

func (f *leaveTypeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.req.Name, "name", "", "Type name (2-50 characters)")
	cmd.Flags().StringVar(&f.req.Description, "description", "", "Description")
	cmd.Flags().IntVar(&f.maxDays, "max-days", 0, "Maximum days per year (1-365)")
	cmd.Flags().StringVar(&f.req.Color, "color", "", "Display color, e.g. #3b82f6")
	cmd.Flags().StringVar(&f.req.Category, "category", "", "general, medical, vacation, personal, emergency, maternity or paternity")
	cmd.Flags().StringVar(&f.req.Priority, "priority", "", "high, medium or low")
	cmd.Flags().BoolVar(&f.req.CarryForward, "carry-forward", false, "Unused days carry into next year")
	cmd.Flags().BoolVar(&f.active, "active", true, "Type can be picked on new requests")
	cmd.Flags().BoolVar(&f.requiresApproval, "requires-approval", true, "Requests need a manager decision")
}

func (f *leaveTypeFlags) request(cmd *cobra.Command) leavetype.LeaveTypeRequest {
	req := f.req
	if cmd.Flags().Changed("max-days") {
		n := f.maxDays
		req.MaxDaysPerYear = &n
	}
	if cmd.Flags().Changed("active") {
		v := f.active
		req.IsActive = &v
	}
	if cmd.Flags().Changed("requires-approval") {
		v := f.requiresApproval
		req.RequiresApproval = &v
	}
	return req
}

func newLeaveTypesCreateCmd() *cobra.Command {
	var flags leaveTypeFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a leave type (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := portal.LeaveTypes.Create(cmd.Context(), flags.request(cmd))
			if err != nil {
				return fmt.Errorf("create leave type: %s", Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave type %s created (%s).\n", created.Name, created.ID)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newLeaveTypesUpdateCmd() *cobra.Command {
	var flags leaveTypeFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a leave type (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := portal.LeaveTypes.Update(cmd.Context(), domain.ID(args[0]), flags.request(cmd))
			if err != nil {
				return fmt.Errorf("update leave type: %s", Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave type %s updated.\n", updated.ID)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newLeaveTypesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a leave type (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := portal.LeaveTypes.Delete(cmd.Context(), domain.ID(args[0])); err != nil {
				return fmt.Errorf("delete leave type: %s", Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave type %s deleted.\n", args[0])
			return nil
		},
	}
}

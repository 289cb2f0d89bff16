package cli

import (
	"fmt"
	"io"
	"strings"

	"leave-portal/internal/domain"
	"leave-portal/internal/leave"

	"github.com/spf13/cobra"
)

func newLeavesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leaves",
		Aliases: []string{"leave"},
		Short:   "File and review leave requests",
	}
	cmd.AddCommand(
		newLeavesListCmd(),
		newLeavesShowCmd(),
		newLeavesCreateCmd(),
		newLeavesUpdateCmd(),
		newLeavesApproveCmd(),
		newLeavesRejectCmd(),
		newLeavesDeleteCmd(),
		newLeavesSummaryCmd(),
	)
	return cmd
}

// currentScope resolves --scope against the signed-in user.
func currentScope(kind string) (leave.Scope, error) {
	sess, _ := portal.Guard.CurrentSession()
	return leave.ParseScope(kind, sess.UserID)
}

func newLeavesListCmd() *cobra.Command {
	var (
		scope  string
		filter leave.Filter
		status string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leave requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := currentScope(scope)
			if err != nil {
				return fmt.Errorf("list leaves: %s", Describe(err))
			}
			if status != "" {
				st, ok := leave.ParseStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q (want PENDING, APPROVED or REJECTED)", status)
				}
				filter.Status = st
			}

			items, err := portal.Leaves.ListScope(cmd.Context(), sc)
			if err != nil {
				return fmt.Errorf("list leaves: %s", Describe(err))
			}

			items = filter.Apply(items)
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No leave requests found.")
				return nil
			}
			printLeaveTable(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "all", "all, mine or team")
	cmd.Flags().StringVar(&status, "status", "", "Only this status")
	cmd.Flags().StringVar(&filter.LeaveType, "type", "", "Only this leave type")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Match employee name, id or type")
	cmd.Flags().StringVar(&filter.SortBy, "sort", leave.SortAppliedDate, "appliedDate, startDate, employeeName, status or duration")
	cmd.Flags().BoolVar(&filter.Desc, "desc", true, "Sort descending")
	return cmd
}

func printLeaveTable(w io.Writer, items []leave.LeaveApplication) {
	fmt.Fprintf(w, "%-8s  %-20s  %-14s  %-10s  %-10s  %5s  %s\n", "ID", "EMPLOYEE", "TYPE", "START", "END", "DAYS", "STATUS")
	fmt.Fprintf(w, "%-8s  %-20s  %-14s  %-10s  %-10s  %5s  %s\n", "--", "--------", "----", "-----", "---", "----", "------")
	for _, l := range items {
		fmt.Fprintf(w, "%-8s  %-20s  %-14s  %-10s  %-10s  %5.1f  %s\n",
			l.ID, truncate(l.EmployeeName, 20), truncate(l.LeaveType, 14),
			dateOnly(l.StartDate), dateOnly(l.EndDate), l.Days(), l.Status)
	}
}

func newLeavesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one leave request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := portal.Leaves.Get(cmd.Context(), domain.ID(args[0]))
			if err != nil {
				return fmt.Errorf("show leave: %s", Describe(err))
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:         %s\n", l.ID)
			fmt.Fprintf(w, "Employee:   %s\n", l.EmployeeName)
			fmt.Fprintf(w, "Type:       %s\n", l.LeaveType)
			fmt.Fprintf(w, "Dates:      %s to %s (%.1f days)\n", dateOnly(l.StartDate), dateOnly(l.EndDate), l.Days())
			fmt.Fprintf(w, "Status:     %s\n", l.Status)
			fmt.Fprintf(w, "Reason:     %s\n", l.Reason)
			if l.EmergencyContact != "" {
				fmt.Fprintf(w, "Emergency:  %s\n", l.EmergencyContact)
			}
			if l.RejectionReason != "" {
				fmt.Fprintf(w, "Rejected:   %s\n", l.RejectionReason)
			}
			return nil
		},
	}
}

func bindLeaveFlags(cmd *cobra.Command, req *leave.LeaveRequest) {
	cmd.Flags().StringVar((*string)(&req.LeaveTypeID), "type-id", "", "Leave type id")
	cmd.Flags().StringVar(&req.LeaveType, "type", "", "Leave type name")
	cmd.Flags().StringVar(&req.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.EndDate, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "Reason")
	cmd.Flags().BoolVar(&req.HalfDay, "half-day", false, "Half-day leave")
	cmd.Flags().StringVar(&req.EmergencyContact, "emergency-contact", "", "Emergency contact (required for emergency leave)")
	cmd.Flags().StringVar(&req.HandoverNotes, "handover", "", "Handover notes")
}

func newLeavesCreateCmd() *cobra.Command {
	var req leave.CreateLeaveRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "File a leave request",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := portal.Leaves.Create(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("create leave: %s", Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave %s filed for %.1f days.\n", created.ID,
				leave.DurationDaysFromStrings(req.StartDate, req.EndDate, req.HalfDay))
			warnRefresh(cmd.ErrOrStderr())
			return nil
		},
	}
	bindLeaveFlags(cmd, &req)
	return cmd
}

func newLeavesUpdateCmd() *cobra.Command {
	var req leave.UpdateLeaveRequest

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a pending leave request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := portal.Leaves.Update(cmd.Context(), domain.ID(args[0]), req)
			if err != nil {
				return fmt.Errorf("update leave: %s", Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave %s updated.\n", updated.ID)
			warnRefresh(cmd.ErrOrStderr())
			return nil
		},
	}
	bindLeaveFlags(cmd, &req)
	return cmd
}

func newLeavesApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve ID",
		Short: "Approve a pending leave request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := portal.Leaves.Approve(cmd.Context(), domain.ID(args[0])); err != nil {
				return fmt.Errorf("approve leave: %s", Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave %s approved.\n", args[0])
			warnRefresh(cmd.ErrOrStderr())
			return nil
		},
	}
}

func newLeavesRejectCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject ID",
		Short: "Reject a pending leave request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := portal.Leaves.Reject(cmd.Context(), domain.ID(args[0]), reason); err != nil {
				return fmt.Errorf("reject leave: %s", Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave %s rejected.\n", args[0])
			warnRefresh(cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", fmt.Sprintf("Reason shown to the employee (%d-%d characters)", leave.MinRejectReason, leave.MaxRejectReason))
	return cmd
}

func newLeavesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a leave request (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := portal.Leaves.Remove(cmd.Context(), domain.ID(args[0])); err != nil {
				return fmt.Errorf("delete leave: %s", Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leave %s deleted.\n", args[0])
			warnRefresh(cmd.ErrOrStderr())
			return nil
		},
	}
}

func newLeavesSummaryCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show leave counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := currentScope(scope)
			if err != nil {
				return fmt.Errorf("summary: %s", Describe(err))
			}
			if _, err := portal.Leaves.ListScope(cmd.Context(), sc); err != nil {
				return fmt.Errorf("summary: %s", Describe(err))
			}

			s := portal.Leaves.Summary()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total:            %d\n", s.Total)
			fmt.Fprintf(w, "Pending:          %d\n", s.Pending)
			fmt.Fprintf(w, "Approved:         %d (%d today)\n", s.Approved, s.ApprovedToday)
			fmt.Fprintf(w, "Rejected:         %d\n", s.Rejected)
			fmt.Fprintf(w, "Days used (year): %.1f\n", s.DaysUsedThisYear)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "mine", "all, mine or team")
	return cmd
}

// warnRefresh reports a list refresh that failed after the mutation itself
// went through.
func warnRefresh(w io.Writer) {
	if msg := portal.Leaves.LastError(); msg != "" {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

func dateOnly(s string) string {
	s, _, _ = strings.Cut(s, "T")
	return s
}

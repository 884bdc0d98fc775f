package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront-client/internal/decision"
	"storefront-client/internal/model"
	"storefront-client/internal/resource"
	"storefront-client/internal/viewmodel"
)

// confirm runs action behind the decision frame.
func (c *cli) confirm(cmd *cobra.Command, f decision.Frame, action func(ctx context.Context) error) error {
	p := decision.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), c.assumeYes)
	if err := p.Run(cmd.Context(), f, action); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Done")
	return nil
}

// === Finance ===

func (c *cli) financeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "finance", Short: "Finance department portal"}

	issues := &cobra.Command{
		Use:   "issues",
		Short: "List finance issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := load(cmd.Context(), viewmodel.FinanceIssues(c.app.finance))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data))
			for _, i := range data {
				rows = append(rows, []string{i.ID.String(), i.Description, money(i.Cost), i.Status, orDash(i.EmployeeName)})
			}
			return newPrinter(cmd.OutOrStdout(), c.output).table(data, []string{"ID", "Description", "Cost", "Status", "Employee"}, rows)
		},
	}

	issue := &cobra.Command{
		Use:   "issue <id>",
		Short: "Show a finance issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := loadDetail(cmd.Context(), viewmodel.FinanceIssueDetail(c.app.finance), args[0])
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), c.output).fields(i,
				"ID", i.ID.String(),
				"Description", i.Description,
				"Cost", money(i.Cost),
				"Status", i.Status,
				"Employee", orDash(i.EmployeeName),
			)
		},
	}

	var description, cost string
	create := &cobra.Command{
		Use:   "create-issue",
		Short: "Record a finance issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.FinanceIssueInput{Description: description}
			if cost != "" {
				d, err := model.ParseAmount(cost)
				if err != nil {
					return err
				}
				in.Cost = &d
			}
			created, err := c.app.finance.CreateIssue(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created issue %s\n", created.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "issue description")
	create.Flags().StringVar(&cost, "cost", "", "cost")
	_ = create.MarkFlagRequired("description")

	del := &cobra.Command{
		Use:   "delete-issue <id>",
		Short: "Delete a finance issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			f := decision.Frame{Body: "Finance issue deletion", Preview: "Issue " + id.String() + " will be deleted"}
			return c.confirm(cmd, f, func(ctx context.Context) error {
				return c.app.finance.DeleteIssue(ctx, id)
			})
		},
	}

	reimbursements := &cobra.Command{
		Use:   "reimbursements",
		Short: "List reimbursements",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := load(cmd.Context(), viewmodel.Reimbursements(c.app.finance))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data))
			for _, r := range data {
				rows = append(rows, []string{r.ID.String(), orDash(r.EmployeeName), money(r.Amount), r.Status, orDash(r.Date)})
			}
			return newPrinter(cmd.OutOrStdout(), c.output).table(data, []string{"ID", "Employee", "Amount", "Status", "Date"}, rows)
		},
	}

	reimbursement := &cobra.Command{
		Use:   "reimbursement <id>",
		Short: "Show a reimbursement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadDetail(cmd.Context(), viewmodel.ReimbursementDetail(c.app.finance), args[0])
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), c.output).fields(r,
				"ID", r.ID.String(),
				"Employee", orDash(r.EmployeeName),
				"Amount", money(r.Amount),
				"Description", orDash(r.Description),
				"Status", r.Status,
			)
		},
	}

	var comment string
	settle := &cobra.Command{
		Use:       "settle-reimbursement <id> <approved|rejected>",
		Short:     "Approve or reject a pending reimbursement",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"approved", "rejected"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, status := model.ID(args[0]), args[1]
			if status != "approved" && status != "rejected" {
				return fmt.Errorf("status must be approved or rejected")
			}
			f := decision.Frame{Body: "Reimbursement decision", Preview: "Reimbursement " + id.String() + " will be " + status}
			return c.confirm(cmd, f, func(ctx context.Context) error {
				_, err := c.app.finance.UpdateReimbursement(ctx, id, model.ReimbursementUpdate{Status: status, Comment: comment})
				return err
			})
		},
	}
	settle.Flags().StringVar(&comment, "comment", "", "comment for the employee")

	cmd.AddCommand(issues, issue, create, del, reimbursements, reimbursement, settle)
	return cmd
}

// === Customer service ===

func (c *cli) refundsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "refunds", Short: "Customer refund requests"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List refund requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := load(cmd.Context(), viewmodel.RefundRequests(c.app.customerService))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data))
			for _, r := range data {
				rows = append(rows, []string{r.ID.String(), orDash(r.OrderID.String()), r.Status, money(r.Amount), orDash(r.DateRequested)})
			}
			return newPrinter(cmd.OutOrStdout(), c.output).table(data, []string{"ID", "Order", "Status", "Amount", "Requested"}, rows)
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a refund request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadDetail(cmd.Context(), viewmodel.RefundRequestDetail(c.app.customerService), args[0])
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), c.output).fields(r,
				"ID", r.ID.String(),
				"Order", orDash(r.OrderID.String()),
				"Status", r.Status,
				"Amount", money(r.Amount),
				"Description", orDash(r.Description),
				"Handled by", orDash(r.EmployeeName),
			)
		},
	}

	cmd.AddCommand(list, show, c.refundDecisionCmd(model.RefundApprove), c.refundDecisionCmd(model.RefundDeny))
	return cmd
}

func (c *cli) refundDecisionCmd(verdict model.RefundDecision) *cobra.Command {
	use := "approve"
	if verdict == model.RefundDeny {
		use = "deny"
	}
	var amount, description string
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: "Mark a refund request " + string(verdict),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			preview := "Refund request " + id.String() + " will be " + string(verdict)
			if amount != "" && verdict == model.RefundApprove {
				preview += " for " + amount
			}
			f := decision.Frame{Body: "Customer refund decision", Preview: preview}
			return c.confirm(cmd, f, func(ctx context.Context) error {
				return c.app.customerService.DecideRefund(ctx, id, verdict, amount, description)
			})
		},
	}
	if verdict == model.RefundApprove {
		cmd.Flags().StringVar(&amount, "amount", "", "refund amount")
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "note for the customer")
	return cmd
}

func (c *cli) grievancesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "grievances", Short: "Shipment grievance reports"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List grievance reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := load(cmd.Context(), viewmodel.GrievanceReports(c.app.customerService))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data))
			for _, g := range data {
				rows = append(rows, []string{g.ID.String(), orDash(g.ShipmentID.String()), orDash(g.IssueType), g.Description, orDash(g.Status)})
			}
			return newPrinter(cmd.OutOrStdout(), c.output).table(data, []string{"ID", "Shipment", "Type", "Description", "Status"}, rows)
		},
	}

	process := &cobra.Command{
		Use:   "process <id> <fault-type>",
		Short: "Assign a fault type to a grievance report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, faultType := model.ID(args[0]), args[1]
			f := decision.Frame{Body: "Shipment report processing", Preview: "Report " + id.String() + " will be marked " + faultType}
			return c.confirm(cmd, f, func(ctx context.Context) error {
				return c.app.customerService.ProcessShipmentReport(ctx, id, faultType)
			})
		},
	}

	cmd.AddCommand(list, process)
	return cmd
}

// === Shipment ===

func (c *cli) shipmentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "shipments", Short: "Shipment department portal"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List shipments",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := load(cmd.Context(), viewmodel.Shipments(c.app.shipment))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data))
			for _, s := range data {
				rows = append(rows, []string{s.ID.String(), orDash(s.OrderID.String()), s.ShipmentStatus, orDash(s.City), orDash(s.Country)})
			}
			return newPrinter(cmd.OutOrStdout(), c.output).table(data, []string{"ID", "Order", "Status", "City", "Country"}, rows)
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show shipment details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadDetail(cmd.Context(), viewmodel.ShipmentDetail(c.app.shipment), args[0])
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), c.output).fields(s,
				"ID", s.ID.String(),
				"Order", orDash(s.OrderID.String()),
				"Status", s.ShipmentStatus,
				"Ordered", orDash(s.OrderDate),
				"Address", orDash(s.Address),
				"City", orDash(s.City),
				"Province", orDash(s.Province),
				"Country", orDash(s.Country),
			)
		},
	}

	orders := &cobra.Command{
		Use:   "orders",
		Short: "List orders awaiting shipment",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := load(cmd.Context(), viewmodel.Orders(c.app.shipment))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data))
			for _, o := range data {
				rows = append(rows, []string{o.ID.String(), o.OrderNumber, o.OrderStatus, strconv.Itoa(len(o.Items)), orDash(o.CreatedAt)})
			}
			return newPrinter(cmd.OutOrStdout(), c.output).table(data, []string{"ID", "Number", "Status", "Items", "Created"}, rows)
		},
	}

	var location string
	event := &cobra.Command{
		Use:   "event <order-id> <status>",
		Short: "Record a shipment event for an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.ShipmentEventInput{OrderID: model.ID(args[0]), Status: args[1], Location: location}
			f := decision.Frame{Body: "Shipment event", Preview: "Order " + in.OrderID.String() + " will move to " + in.Status}
			return c.confirm(cmd, f, func(ctx context.Context) error {
				return c.app.shipment.CreateShipmentEvent(ctx, in)
			})
		},
	}
	event.Flags().StringVar(&location, "location", "", "event location")

	deleteIssue := &cobra.Command{
		Use:   "delete-issue <issue-id>",
		Short: "Delete a shipment issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			f := decision.Frame{Body: "Shipment issue deletion", Preview: "Issue " + id.String() + " will be deleted"}
			return c.confirm(cmd, f, func(ctx context.Context) error {
				return c.app.shipment.DeleteShipmentIssue(ctx, id)
			})
		},
	}

	cmd.AddCommand(list, show, orders, event, deleteIssue)
	return cmd
}

// === Seller ===

func (c *cli) sellerCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "seller", Short: "Seller portal"}

	var q struct {
		keywords, minPrice, maxPrice string
		page, pageSize               int
	}
	products := &cobra.Command{
		Use:   "products",
		Short: "Search the seller catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := viewmodel.SellerProducts(c.app.seller, resource.ProductQuery{
				Keywords: q.keywords,
				MinPrice: q.minPrice,
				MaxPrice: q.maxPrice,
				Page:     q.page,
				PageSize: q.pageSize,
			})
			data, err := load(cmd.Context(), loader)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data))
			for _, p := range data {
				rows = append(rows, []string{p.ID.String(), p.Name, orDash(p.CategoryName), model.FormatMoney(p.Price), strconv.Itoa(len(p.Variants))})
			}
			return newPrinter(cmd.OutOrStdout(), c.output).table(data, []string{"ID", "Name", "Category", "Price", "Variants"}, rows)
		},
	}
	products.Flags().StringVarP(&q.keywords, "keywords", "k", "", "search keywords")
	products.Flags().StringVar(&q.minPrice, "min-price", "", "minimum price")
	products.Flags().StringVar(&q.maxPrice, "max-price", "", "maximum price")
	products.Flags().IntVar(&q.page, "page", 1, "page number")
	products.Flags().IntVar(&q.pageSize, "page-size", 20, "results per page")

	removeProduct := &cobra.Command{
		Use:   "delete-product <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			f := decision.Frame{Body: "Product deletion", Preview: "Product " + id.String() + " will be removed from the catalog"}
			return c.confirm(cmd, f, func(ctx context.Context) error {
				return c.app.seller.DeleteProduct(ctx, id)
			})
		},
	}

	var year, month int
	payouts := &cobra.Command{
		Use:   "payouts",
		Short: "Show payouts for a year or month",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := load(cmd.Context(), viewmodel.Payouts(c.app.seller, year, month))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data))
			for _, p := range data {
				rows = append(rows, []string{strconv.Itoa(p.Year), strconv.Itoa(p.Month), model.FormatMoney(p.Amount), orDash(p.Status)})
			}
			return newPrinter(cmd.OutOrStdout(), c.output).table(data, []string{"Year", "Month", "Amount", "Status"}, rows)
		},
	}
	payouts.Flags().IntVar(&year, "year", 0, "payout year")
	payouts.Flags().IntVar(&month, "month", 0, "payout month (0 for the whole year)")
	_ = payouts.MarkFlagRequired("year")

	cmd.AddCommand(products, removeProduct, payouts)
	return cmd
}

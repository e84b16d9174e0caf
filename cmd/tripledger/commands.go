package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/shopspring/decimal"

	"github.com/mkale/tripledger/internal/models"
	"github.com/mkale/tripledger/internal/service"
)

func (a *app) memberCommand(parent *ff.FlagSet) *ff.Command {
	addFlags := ff.NewFlagSet("member add").SetParent(parent)
	var (
		name  = addFlags.StringLong("name", "", "display name (required)")
		role  = addFlags.StringLong("role", "member", "member or organizer")
		limit = addFlags.StringLong("limit", "0", "individual budget limit")
	)

	budgetFlags := ff.NewFlagSet("member budget").SetParent(parent)
	var (
		actor    = budgetFlags.StringLong("actor", "", "acting person id (required)")
		person   = budgetFlags.StringLong("person", "", "person id to update (required)")
		newLimit = budgetFlags.StringLong("limit", "", "new budget limit (required)")
	)

	return &ff.Command{
		Name:      "member",
		Usage:     "tripledger member SUBCOMMAND ...",
		ShortHelp: "manage trip members",
		Flags:     ff.NewFlagSet("member").SetParent(parent),
		Subcommands: []*ff.Command{
			{
				Name:      "add",
				Usage:     "tripledger member add --name NAME [--role ROLE] [--limit AMOUNT]",
				ShortHelp: "add a trip member",
				Flags:     addFlags,
				Exec: func(ctx context.Context, args []string) error {
					budgetLimit, err := parseAmount(*limit)
					if err != nil {
						return err
					}
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						member, err := svc.AddMember(ctx, *name, models.ParseRole(*role), budgetLimit)
						if err != nil {
							return err
						}
						fmt.Printf("added %s (%s)\n", member.Name, member.ID)
						return nil
					})
				},
			},
			{
				Name:      "list",
				Usage:     "tripledger member list",
				ShortHelp: "list trip members",
				Flags:     ff.NewFlagSet("member list").SetParent(parent),
				Exec: func(ctx context.Context, args []string) error {
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						members, err := svc.ListMembers(ctx)
						if err != nil {
							return err
						}
						tw := newTable()
						fmt.Fprintln(tw, "ID\tNAME\tROLE\tBUDGET")
						for _, m := range members {
							fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Role, m.BudgetLimit.StringFixed(2))
						}
						return tw.Flush()
					})
				},
			},
			{
				Name:      "budget",
				Usage:     "tripledger member budget --actor ID --person ID --limit AMOUNT",
				ShortHelp: "update a member's budget limit",
				Flags:     budgetFlags,
				Exec: func(ctx context.Context, args []string) error {
					budgetLimit, err := parseAmount(*newLimit)
					if err != nil {
						return err
					}
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						if err := svc.UpdateBudgetLimit(ctx, *actor, *person, budgetLimit); err != nil {
							return err
						}
						fmt.Printf("budget for %s set to %s\n", *person, budgetLimit.StringFixed(2))
						return nil
					})
				},
			},
		},
	}
}

func (a *app) expenseCommand(parent *ff.FlagSet) *ff.Command {
	addFlags := ff.NewFlagSet("expense add").SetParent(parent)
	var (
		desc     = addFlags.StringLong("desc", "", "expense description (required)")
		amount   = addFlags.StringLong("amount", "", "total amount (required)")
		payer    = addFlags.StringLong("payer", "", "person id who fronted the money (required)")
		date     = addFlags.StringLong("date", time.Now().Format("2006-01-02"), "calendar date")
		category = addFlags.StringLong("category", "other", "expense category")
		event    = addFlags.StringLong("event", "", "itinerary event id (optional)")
	)

	rmFlags := ff.NewFlagSet("expense rm").SetParent(parent)
	rmActor := rmFlags.StringLong("actor", "", "acting person id (required)")

	return &ff.Command{
		Name:      "expense",
		Usage:     "tripledger expense SUBCOMMAND ...",
		ShortHelp: "manage expenses",
		Flags:     ff.NewFlagSet("expense").SetParent(parent),
		Subcommands: []*ff.Command{
			{
				Name:      "add",
				Usage:     "tripledger expense add --desc D --amount A --payer ID [flags] [PERSON=AMOUNT ...]",
				ShortHelp: "record an expense; without explicit splits it is divided evenly across all members",
				Flags:     addFlags,
				Exec: func(ctx context.Context, args []string) error {
					total, err := parseAmount(*amount)
					if err != nil {
						return err
					}
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						splits, err := resolveSplits(ctx, svc, total, args)
						if err != nil {
							return err
						}
						expense, err := svc.AddExpense(ctx, &models.Expense{
							Description: *desc,
							Amount:      total,
							PaidBy:      *payer,
							Date:        *date,
							Category:    models.ParseCategory(*category),
							EventID:     *event,
							Splits:      splits,
						})
						if err != nil {
							return err
						}
						fmt.Printf("recorded %s (%s)\n", expense.Description, expense.ID)
						return nil
					})
				},
			},
			{
				Name:      "rm",
				Usage:     "tripledger expense rm --actor ID EXPENSE_ID",
				ShortHelp: "delete an expense (payer or organizer only)",
				Flags:     rmFlags,
				Exec: func(ctx context.Context, args []string) error {
					if len(args) != 1 {
						return fmt.Errorf("expected exactly one expense id")
					}
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						if err := svc.DeleteExpense(ctx, *rmActor, args[0]); err != nil {
							return err
						}
						fmt.Printf("deleted %s\n", args[0])
						return nil
					})
				},
			},
			{
				Name:      "list",
				Usage:     "tripledger expense list",
				ShortHelp: "list expenses, newest first",
				Flags:     ff.NewFlagSet("expense list").SetParent(parent),
				Exec: func(ctx context.Context, args []string) error {
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						expenses, err := svc.ListExpenses(ctx)
						if err != nil {
							return err
						}
						names, err := memberNames(ctx, svc)
						if err != nil {
							return err
						}
						tw := newTable()
						fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tCATEGORY\tAMOUNT\tPAID BY")
						for _, e := range expenses {
							fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
								e.ID, e.Date, e.Description, e.Category,
								e.Amount.StringFixed(2), displayName(names, e.PaidBy))
						}
						return tw.Flush()
					})
				},
			},
		},
	}
}

func (a *app) balancesCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "balances",
		Usage:     "tripledger balances",
		ShortHelp: "show each member's net balance",
		Flags:     ff.NewFlagSet("balances").SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
				balances, err := svc.Balances(ctx)
				if err != nil {
					return err
				}
				names, err := memberNames(ctx, svc)
				if err != nil {
					return err
				}

				ids := make([]string, 0, len(balances))
				for id := range balances {
					ids = append(ids, id)
				}
				sort.Strings(ids)

				tw := newTable()
				fmt.Fprintln(tw, "MEMBER\tBALANCE")
				for _, id := range ids {
					fmt.Fprintf(tw, "%s\t%s\n", displayName(names, id), balances[id].StringFixed(2))
				}
				return tw.Flush()
			})
		},
	}
}

func (a *app) transfersCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "transfers",
		Usage:     "tripledger transfers",
		ShortHelp: "show who should pay whom to settle up",
		Flags:     ff.NewFlagSet("transfers").SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
				transfers, err := svc.SuggestedTransfers(ctx)
				if err != nil {
					return err
				}
				names, nerr := memberNames(ctx, svc)
				if nerr != nil {
					return nerr
				}
				if len(transfers) == 0 {
					fmt.Println("all settled up")
					return nil
				}
				tw := newTable()
				fmt.Fprintln(tw, "FROM\tTO\tAMOUNT")
				for _, t := range transfers {
					fmt.Fprintf(tw, "%s\t%s\t%s\n",
						displayName(names, t.From), displayName(names, t.To), t.Amount.StringFixed(2))
				}
				return tw.Flush()
			})
		},
	}
}

func (a *app) summaryCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "summary",
		Usage:     "tripledger summary",
		ShortHelp: "show spending totals, per-member and per-category",
		Flags:     ff.NewFlagSet("summary").SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
				summary, err := svc.Summarize(ctx)
				if err != nil {
					return err
				}
				members, err := svc.ListMembers(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("total spent: %s of %s budgeted\n\n",
					summary.TotalSpent.StringFixed(2), summary.TripBudget.StringFixed(2))

				tw := newTable()
				fmt.Fprintln(tw, "MEMBER\tSPENT\tLIMIT\tUSED")
				for _, m := range members {
					spent := summary.PersonSpending[m.ID]
					progress := summary.BudgetProgress[m.ID].Mul(decimal.NewFromInt(100))
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s%%\n",
						m.Name, spent.StringFixed(2), m.BudgetLimit.StringFixed(2), progress.StringFixed(0))
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				fmt.Println()
				tw = newTable()
				fmt.Fprintln(tw, "CATEGORY\tSPENT")
				for _, c := range models.Categories() {
					fmt.Fprintf(tw, "%s\t%s\n", c, summary.CategoryTotals[c].StringFixed(2))
				}
				return tw.Flush()
			})
		},
	}
}

func (a *app) settleCommand(parent *ff.FlagSet) *ff.Command {
	proposeFlags := ff.NewFlagSet("settle propose").SetParent(parent)
	var (
		proposeActor = proposeFlags.StringLong("actor", "", "debtor person id (required)")
		proposeTo    = proposeFlags.StringLong("to", "", "creditor person id (required)")
		proposeAmt   = proposeFlags.StringLong("amount", "", "payment amount (required)")
	)

	confirmFlags := ff.NewFlagSet("settle confirm").SetParent(parent)
	confirmActor := confirmFlags.StringLong("actor", "", "receiving person id (required)")

	declineFlags := ff.NewFlagSet("settle decline").SetParent(parent)
	declineActor := declineFlags.StringLong("actor", "", "receiving person id (required)")

	return &ff.Command{
		Name:      "settle",
		Usage:     "tripledger settle SUBCOMMAND ...",
		ShortHelp: "record and resolve real-world payments",
		Flags:     ff.NewFlagSet("settle").SetParent(parent),
		Subcommands: []*ff.Command{
			{
				Name:      "propose",
				Usage:     "tripledger settle propose --actor ID --to ID --amount A",
				ShortHelp: "record a payment you made, pending the receiver's confirmation",
				Flags:     proposeFlags,
				Exec: func(ctx context.Context, args []string) error {
					amount, err := parseAmount(*proposeAmt)
					if err != nil {
						return err
					}
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						settlement, err := svc.ProposeSettlement(ctx, *proposeActor, *proposeTo, amount)
						if err != nil {
							return err
						}
						fmt.Printf("proposed settlement %s, waiting for confirmation\n", settlement.ID)
						return nil
					})
				},
			},
			{
				Name:      "confirm",
				Usage:     "tripledger settle confirm --actor ID SETTLEMENT_ID",
				ShortHelp: "confirm a payment you received",
				Flags:     confirmFlags,
				Exec: func(ctx context.Context, args []string) error {
					if len(args) != 1 {
						return fmt.Errorf("expected exactly one settlement id")
					}
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						settlement, err := svc.ConfirmSettlement(ctx, *confirmActor, args[0])
						if err != nil {
							return err
						}
						fmt.Printf("confirmed %s for %s\n", settlement.ID, settlement.Amount.StringFixed(2))
						return nil
					})
				},
			},
			{
				Name:      "decline",
				Usage:     "tripledger settle decline --actor ID SETTLEMENT_ID",
				ShortHelp: "decline a payment recorded against you",
				Flags:     declineFlags,
				Exec: func(ctx context.Context, args []string) error {
					if len(args) != 1 {
						return fmt.Errorf("expected exactly one settlement id")
					}
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						settlement, err := svc.DeclineSettlement(ctx, *declineActor, args[0])
						if err != nil {
							return err
						}
						fmt.Printf("declined %s\n", settlement.ID)
						return nil
					})
				},
			},
			{
				Name:      "history",
				Usage:     "tripledger settle history",
				ShortHelp: "list settlement records, newest first",
				Flags:     ff.NewFlagSet("settle history").SetParent(parent),
				Exec: func(ctx context.Context, args []string) error {
					return a.run(ctx, func(ctx context.Context, svc *service.LedgerService) error {
						settlements, err := svc.SettlementHistory(ctx)
						if err != nil {
							return err
						}
						names, err := memberNames(ctx, svc)
						if err != nil {
							return err
						}
						tw := newTable()
						fmt.Fprintln(tw, "ID\tFROM\tTO\tAMOUNT\tSTATUS")
						for _, s := range settlements {
							fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
								s.ID, displayName(names, s.From), displayName(names, s.To),
								s.Amount.StringFixed(2), s.Status)
						}
						return tw.Flush()
					})
				},
			},
		},
	}
}

// resolveSplits turns positional PERSON=AMOUNT args into splits, or
// divides the total evenly across all members when none are given.
func resolveSplits(ctx context.Context, svc *service.LedgerService, total decimal.Decimal, args []string) ([]models.Split, error) {
	if len(args) == 0 {
		members, err := svc.ListMembers(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		return models.EvenSplits(total, ids), nil
	}

	splits := make([]models.Split, 0, len(args))
	for _, arg := range args {
		personID, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid split %q, expected PERSON=AMOUNT", arg)
		}
		amount, err := parseAmount(raw)
		if err != nil {
			return nil, err
		}
		splits = append(splits, models.Split{PersonID: personID, Amount: amount})
	}
	return splits, nil
}

// memberNames maps member IDs to display names for output.
func memberNames(ctx context.Context, svc *service.LedgerService) (map[string]string, error) {
	members, err := svc.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names, nil
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

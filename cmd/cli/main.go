package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/amirasaad/fxpay/infra"
	"github.com/amirasaad/fxpay/infra/initializer"
	"github.com/amirasaad/fxpay/pkg/app"
	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/exchange"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  migrate                      apply database migrations
  quote <from> <to> <amount>   convert at the latest published rate
  verify <payment_intent_id>   report an intent and settle its record`

var (
	okText   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
	errText  = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Println(errText("Error:"), err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	cfg, err := config.Load(config.GetEnv("ENV_FILE", ".env"))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cmd == "migrate" {
		logger := initializer.SetupLogger(cfg.Log)
		db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
		if err != nil {
			return err
		}
		if err := infra.RunMigrations(db, logger); err != nil {
			return err
		}
		fmt.Println(okText("Migrations applied"))
		return nil
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return err
	}
	a, err := app.New(deps, cfg)
	if err != nil {
		return err
	}

	switch cmd {
	case "quote":
		if len(args) < 3 {
			return fmt.Errorf("usage: quote <from> <to> <amount>")
		}
		req, err := a.Validator.Validate(exchange.Request{
			Amount:              exchange.Amount(args[2]),
			SourceCurrency:      args[0],
			DestinationCurrency: args[1],
		})
		if err != nil {
			return err
		}
		q, err := a.RatesService.Quote(ctx, req.SourceCurrency, req.DestinationCurrency, req.Amount)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s = %s (rate %s, %s, %s)\n",
			q.Amount, q.From, okText(q.Converted.String()+" "+q.To),
			q.Rate, q.Source, q.FetchedAt.Format(time.RFC3339))
	case "verify":
		if len(args) < 1 {
			return fmt.Errorf("usage: verify <payment_intent_id>")
		}
		v, err := a.PaymentService.VerifyPayment(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Payment %s: %s %s %s\n", args[0], okText(v.Status), v.Amount, v.Currency)
		if v.Warning != "" {
			fmt.Println(warnText("Warning:"), v.Warning)
		}
	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

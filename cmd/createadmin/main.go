package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/db"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/repository"
	"github.com/nkiryanov/salesoffice/internal/repository/postgres"
	"github.com/nkiryanov/salesoffice/internal/service/auth"
	"github.com/nkiryanov/salesoffice/internal/service/employee"
	"github.com/nkiryanov/salesoffice/internal/service/settings"
)

func main() {
	// Values already in the environment win over .env
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Getenv, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "createadmin: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	dsn        string
	fullName   string
	email      string
	phone      string
	password   string
	bcryptCost int

	// Initial settings, seeded only when none were saved yet
	companyName string
	currency    string
}

func parseOptions(getenv func(string) string, args []string) (options, error) {
	o := options{
		dsn:        getenv("DATABASE_URI"),
		password:   getenv("ADMIN_PASSWORD"),
		bcryptCost: bcrypt.DefaultCost,
		currency:   "USD",
	}

	fs := pflag.NewFlagSet("createadmin", pflag.ContinueOnError)
	fs.StringVarP(&o.dsn, "database", "d", o.dsn, "Database connection string")
	fs.StringVar(&o.fullName, "name", "Administrator", "Full name")
	fs.StringVar(&o.email, "email", "", "Login email")
	fs.StringVar(&o.phone, "phone", "", "Phone")
	fs.StringVar(&o.password, "password", o.password, "Password (prefer ADMIN_PASSWORD env)")
	fs.IntVar(&o.bcryptCost, "bcrypt-cost", o.bcryptCost, "bcrypt cost")
	fs.StringVar(&o.companyName, "company", "", "Company name for initial settings")
	fs.StringVar(&o.currency, "currency", o.currency, "Currency for initial settings")

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	var errs []error
	if o.dsn == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if o.email == "" {
		errs = append(errs, errors.New("email is required"))
	} else if err := validator.New().Var(o.email, "email"); err != nil {
		errs = append(errs, fmt.Errorf("email %q is not a valid email address", o.email))
	}
	if o.password == "" {
		errs = append(errs, errors.New("password is required"))
	}

	return o, errors.Join(errs...)
}

func run(ctx context.Context, getenv func(string) string, args []string, out io.Writer) error {
	o, err := parseOptions(getenv, args)
	if err != nil {
		return err
	}

	pool, err := db.ConnectAndMigrate(ctx, o.dsn)
	if err != nil {
		return fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	defer pool.Close()

	var admin models.Employee

	err = postgres.NewStorage(pool).InTx(ctx, func(s repository.Storage) error {
		admin, err = employee.NewService(auth.BcryptHasher{Cost: o.bcryptCost}, s.Employee()).CreateEmployee(ctx, employee.CreateParams{
			FullName: o.fullName,
			Email:    o.email,
			Phone:    o.phone,
			Role:     models.RoleAdmin,
			Password: o.password,
		})
		if err != nil {
			return err
		}

		if o.companyName == "" {
			return nil
		}
		return seedSettings(ctx, settings.NewService(s.Settings()), o, admin.Identity())
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmployeeAlreadyExists) {
			return fmt.Errorf("employee %s already exists", o.email)
		}
		return err
	}

	_, err = fmt.Fprintf(out, "admin created: id=%d email=%s\n", admin.ID, admin.Email)
	return err
}

func seedSettings(ctx context.Context, svc *settings.SettingsService, o options, by models.Identity) error {
	_, err := svc.Get(ctx)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, apperrors.ErrSettingsNotFound):
		return err
	}

	_, err = svc.Save(ctx, models.Settings{
		CompanyName:   o.companyName,
		CompanyEmail:  o.email,
		TaxRate:       decimal.Zero,
		Currency:      o.currency,
		InvoicePrefix: "INV-",
	}, by)
	return err
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/labadmin/internal/gateway"
	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/pkg/apierr"
)

const cliTimeout = 15 * time.Second

var (
	createData string
	updateData string
	deleteYes  bool
)

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "Print a resource as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(args[0], func(ctx context.Context, gw *gateway.Gateway, res model.Resource) error {
			rows, err := gw.List(ctx, res)
			if err != nil {
				return err
			}
			return printJSON(rows)
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Print one record as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return withGateway(args[0], func(ctx context.Context, gw *gateway.Gateway, res model.Resource) error {
			rec, err := gw.Get(ctx, res, id)
			if err != nil {
				return err
			}
			return printJSON(rec)
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create a record from a JSON payload",
	Long: `Create sends a JSON object as a new record. The payload comes
from --data, or from stdin when --data is "-".

Examples:
  labadmin create members --data '{"name":"A. Benali","email":"a@lab.test","status":"permanent"}'
  cat member.json | labadmin create members --data -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := payloadRecord(createData)
		if err != nil {
			return err
		}
		return withGateway(args[0], func(ctx context.Context, gw *gateway.Gateway, res model.Resource) error {
			created, err := gw.Create(ctx, res, rec)
			if err != nil {
				return describeFieldErrors(err)
			}
			return printJSON(created)
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <resource> <id>",
	Short: "Update a record from a JSON payload",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		rec, err := payloadRecord(updateData)
		if err != nil {
			return err
		}
		return withGateway(args[0], func(ctx context.Context, gw *gateway.Gateway, res model.Resource) error {
			updated, err := gw.Update(ctx, res, id, rec)
			if err != nil {
				return describeFieldErrors(err)
			}
			return printJSON(updated)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteYes {
			return fmt.Errorf("refusing to delete without --yes")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return withGateway(args[0], func(ctx context.Context, gw *gateway.Gateway, res model.Resource) error {
			if err := gw.Delete(ctx, res, id); err != nil {
				return err
			}
			fmt.Printf("deleted %s/%d\n", res.Name, id)
			return nil
		})
	},
}

func init() {
	createCmd.Flags().StringVarP(&createData, "data", "d", "", "JSON payload, or - for stdin (required)")
	_ = createCmd.MarkFlagRequired("data")
	updateCmd.Flags().StringVarP(&updateData, "data", "d", "", "JSON payload, or - for stdin (required)")
	_ = updateCmd.MarkFlagRequired("data")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "confirm the deletion")

	rootCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
}

func withGateway(resource string, fn func(context.Context, *gateway.Gateway, model.Resource) error) error {
	res, err := resourceArg(resource)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gw, closeLog, err := newGateway(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()
	return fn(ctx, gw, res)
}

func payloadRecord(data string) (model.Record, error) {
	raw := []byte(data)
	if data == "-" {
		var err error
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	var rec model.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	return rec, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id must be numeric, got %q", s)
	}
	return id, nil
}

// describeFieldErrors expands a validation failure into one line per
// field so script output stays actionable.
func describeFieldErrors(err error) error {
	fields := apierr.FieldErrors(err)
	if len(fields) == 0 {
		return err
	}
	for field, msgs := range fields {
		for _, msg := range msgs {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
		}
	}
	return err
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kevin07696/payout-validation/internal/adapters/memory"
	"github.com/kevin07696/payout-validation/internal/config"
	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	validationService "github.com/kevin07696/payout-validation/internal/services/validation"
	"github.com/kevin07696/payout-validation/pkg/logging"
)

func main() {
	var (
		mode          = flag.String("mode", "creation", "Validation mode: creation, processing, compliance")
		file          = flag.String("file", "-", "JSON batch file, - for stdin")
		jurisdictions = flag.String("jurisdictions", "US", "Comma-separated jurisdictions for compliance mode")
		policyPath    = flag.String("policy", "", "YAML policy file overriding the default thresholds")
		strict        = flag.Bool("strict", false, "Treat warnings as errors in creation mode")
		payees        = flag.String("payees", "", "Comma-separated known payee ids; enables the directory check in creation mode")
		logLevel      = flag.String("log-level", "warn", "Log level written to stderr")
	)
	flag.Parse()

	code, err := run(*mode, *file, *jurisdictions, *policyPath, *strict, *payees, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
	}
	os.Exit(code)
}

// run returns 0 for a valid batch, 1 for an invalid one and 2 for usage errors
func run(mode, file, jurisdictions, policyPath string, strict bool, payees, logLevel string) (int, error) {
	logger, err := logging.New(logLevel, true)
	if err != nil {
		return 2, err
	}
	defer func() { _ = logger.Sync() }()

	policy, err := config.LoadPolicy(policyPath)
	if err != nil {
		return 2, err
	}
	svc, err := validationService.NewService(policy, logger)
	if err != nil {
		return 2, err
	}

	raw, err := readInput(file)
	if err != nil {
		return 2, err
	}

	var batch *domain.PayoutBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return 2, domain.WrapError(domain.ErrorCodeInvalidRequest, "decode batch", err)
	}

	ctx := context.Background()
	var result *domain.ValidationResult
	switch domain.ValidationMode(mode) {
	case domain.ModeCreation:
		opts := ports.DefaultCreationOptions()
		opts.Strict = strict
		result = svc.ValidateForCreation(ctx, batch, opts)
		if ids := splitList(payees); len(ids) > 0 && opts.ValidatePayees {
			check := validationService.NewDirectoryCheck(memory.NewPayeeDirectory(ids...), logger, nil, nil, 1)
			check.Apply(ctx, batch, result)
		}
	case domain.ModeProcessing:
		result = svc.ValidateForProcessing(ctx, batch, ports.DefaultProcessingOptions())
	case domain.ModeCompliance:
		result = svc.ValidateForCompliance(ctx, batch, splitList(jurisdictions), ports.DefaultComplianceOptions())
	default:
		return 2, domain.NewDomainError(domain.ErrorCodeInvalidMode, fmt.Sprintf("unknown mode %q", mode))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return 2, err
	}
	if !result.Valid {
		return 1, nil
	}
	return 0, nil
}

func readInput(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

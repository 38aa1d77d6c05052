// calc calcula un comprobante desde un JSON sin base de datos.
//
// Uso: go run ./cmd/calc -in comprobante.json -pretty
// Lee stdin si no se indica -in. El resultado va a stdout y los logs a stderr.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/pkg/logger"
)

func main() {
	inPath := flag.String("in", "", "archivo JSON con el comprobante (por defecto stdin)")
	igv := flag.String("igv", "18", "tasa de IGV en porcentaje")
	account := flag.String("account", "", "cuenta de detracciones por defecto")
	pretty := flag.Bool("pretty", false, "indentar la salida")
	level := flag.String("log-level", "warn", "nivel de log")
	flag.Parse()

	log := logger.NewWithWriter(logger.Config{Env: "production", Level: *level}, os.Stderr)

	rate, err := decimal.NewFromString(*igv)
	if err != nil {
		log.Fatal().Err(err).Str("igv", *igv).Msg("tasa de IGV inválida")
	}
	cfg := billing.DefaultEngineConfig()
	cfg.IGVRate = rate

	var src io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir comprobante")
		}
		defer f.Close()
		src = f
	}

	var in dto.CalculateDocumentRequest
	if err := json.NewDecoder(src).Decode(&in); err != nil {
		log.Fatal().Err(err).Msg("decodificar comprobante")
	}

	uc := billing.NewCalculateUseCase(cfg, nil, log)
	calc, err := uc.Calculate(in, &entity.Company{DetractionAccount: *account})
	if err != nil {
		out := dto.ErrorResponse{Code: "VALIDATION", Message: err.Error(), Details: domain.Violations(err)}
		if !errors.Is(err, domain.ErrInvalidInput) {
			out.Code = "ERROR"
		}
		writeJSON(os.Stdout, out, *pretty)
		os.Exit(1)
	}
	writeJSON(os.Stdout, calc.Response(), *pretty)
}

func writeJSON(w io.Writer, v any, pretty bool) {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

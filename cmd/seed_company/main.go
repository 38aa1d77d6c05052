// seed_company genera el script SQL que da de alta una empresa emisora y su usuario administrador.
//
// Uso: go run ./cmd/seed_company -ruc 20131312955 -name "Empresa SAC" -email admin@empresa.pe -password ****
// Escribe: migrations/0002_seed_company.sql (o la ruta indicada con -out)
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

func main() {
	ruc := flag.String("ruc", "", "RUC de la empresa emisora (11 dígitos)")
	name := flag.String("name", "", "razón social")
	email := flag.String("email", "", "email del administrador")
	password := flag.String("password", "", "clave del administrador (mínimo 8 caracteres)")
	account := flag.String("account", "", "cuenta de detracciones del Banco de la Nación (opcional)")
	outFlag := flag.String("out", "", "archivo de salida")
	flag.Parse()

	if err := sunat.ValidateRUC(*ruc); err != nil {
		fail("RUC inválido: %v", err)
	}
	if strings.TrimSpace(*name) == "" || strings.TrimSpace(*email) == "" {
		fail("name y email son requeridos")
	}
	if len(*password) < 8 {
		fail("password debe tener al menos 8 caracteres")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fail("hash de password: %v", err)
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = filepath.Join(findModuleRoot(), "migrations", "0002_seed_company.sql")
	}
	out, err := os.Create(outPath)
	if err != nil {
		fail("crear archivo: %v", err)
	}
	defer out.Close()

	companyID := uuid.New().String()
	detraction := "NULL"
	if a := strings.TrimSpace(*account); a != "" {
		detraction = "'" + escapeSQL(a) + "'"
	}

	fmt.Fprintf(out, "-- Empresa emisora %s (%s)\n\n", escapeSQL(*name), *ruc)
	fmt.Fprintf(out, "INSERT INTO companies (id, name, ruc, detraction_account, status)\n")
	fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', %s, '%s')\n", companyID, escapeSQL(*name), *ruc, detraction, entity.CompanyStatusActive)
	out.WriteString("ON CONFLICT (ruc) DO NOTHING;\n\n")

	fmt.Fprintf(out, "INSERT INTO users (id, company_id, email, password_hash, name, role)\n")
	fmt.Fprintf(out, "SELECT '%s', id, '%s', '%s', '%s', '%s' FROM companies WHERE ruc = '%s'\n",
		uuid.New().String(), escapeSQL(strings.ToLower(*email)), string(hash), escapeSQL(*name), entity.RoleAdmin, *ruc)
	out.WriteString("ON CONFLICT (email) DO NOTHING;\n")

	fmt.Printf("Generado %s: empresa %s, administrador %s\n", outPath, *ruc, *email)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

package sunat

import (
	"fmt"
	"strings"
)

// pesos del módulo 11 para los 10 primeros dígitos del RUC.
var rucWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

var rucPrefixes = map[string]bool{"10": true, "15": true, "16": true, "17": true, "20": true}

// ValidateRUC valida longitud, prefijo y dígito verificador de un RUC.
func ValidateRUC(ruc string) error {
	ruc = strings.TrimSpace(ruc)
	if len(ruc) != 11 {
		return fmt.Errorf("sunat: el RUC debe tener 11 dígitos, se recibieron %d", len(ruc))
	}
	for _, r := range ruc {
		if r < '0' || r > '9' {
			return fmt.Errorf("sunat: el RUC solo admite dígitos")
		}
	}
	if !rucPrefixes[ruc[:2]] {
		return fmt.Errorf("sunat: prefijo de RUC inválido %q", ruc[:2])
	}
	expected, err := ComputeRUCCheckDigit(ruc[:10])
	if err != nil {
		return err
	}
	if ruc[10] != expected {
		return fmt.Errorf("sunat: dígito verificador del RUC inválido: esperado %c, recibido %c", expected, ruc[10])
	}
	return nil
}

// ComputeRUCCheckDigit calcula el dígito verificador para los 10 primeros dígitos.
func ComputeRUCCheckDigit(base string) (byte, error) {
	if len(base) != 10 {
		return 0, fmt.Errorf("sunat: se requieren 10 dígitos para calcular el verificador, se recibieron %d", len(base))
	}
	var sum int
	for i := 0; i < 10; i++ {
		c := base[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("sunat: el RUC solo admite dígitos")
		}
		sum += int(c-'0') * rucWeights[i]
	}
	digit := 11 - sum%11
	switch digit {
	case 10:
		digit = 0
	case 11:
		digit = 1
	}
	return byte('0' + digit), nil
}

package utils

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/mozillazg/go-pinyin"
)

var commonGivenNames = []string{
	"José", "Juan", "Luis", "Carlos", "Jorge", "Pedro", "Diego", "Matías", "Felipe", "Cristián",
	"María", "Camila", "Valentina", "Javiera", "Constanza", "Francisca", "Catalina", "Daniela", "Paula", "Andrea",
}

var commonSurnames = []string{
	"González", "Muñoz", "Rojas", "Díaz", "Pérez", "Soto", "Contreras", "Silva", "Martínez", "Sepúlveda",
	"Morales", "Rodríguez", "López", "Fuentes", "Hernández", "Torres", "Araya", "Flores", "Espinoza", "Valenzuela",
}

var communes = []string{
	"Pudahuel", "Maipú", "Cerrillos", "Estación Central", "Quilicura", "Lo Prado", "Renca", "Cerro Navia",
}

var streets = []string{
	"Av. Pajaritos", "Av. Teniente Cruz", "Los Aromos", "San Pablo", "Camino a Noviciado", "Las Torres",
}

func GenerateRandomName() string {
	given := commonGivenNames[rand.Intn(len(commonGivenNames))]
	first := commonSurnames[rand.Intn(len(commonSurnames))]
	second := commonSurnames[rand.Intn(len(commonSurnames))]
	return given + " " + first + " " + second
}

var roles = []domain.Role{
	domain.RoleAgent,
	domain.RoleAgent,
	domain.RoleAgent,
	domain.RoleSupervisor,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

// RUTCheckDigit calcula el dígito verificador (módulo 11) de un cuerpo numérico.
func RUTCheckDigit(body int) string {
	sum, factor := 0, 2
	for n := body; n > 0; n /= 10 {
		sum += (n % 10) * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	switch dv := 11 - sum%11; dv {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(dv)
	}
}

// GenerateRandomRUT devuelve un RUT válido con puntos y guion, ej. 12.345.678-5.
func GenerateRandomRUT() string {
	body := rand.Intn(20000000) + 5000000
	s := strconv.Itoa(body)

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String() + "-" + RUTCheckDigit(body)
}

// ValidRUT revisa el dígito verificador de un RUT en cualquier formato.
func ValidRUT(raw string) bool {
	id := identity.NormalizeIdentifier(raw)
	body := identity.IdentifierBody(id)
	if body == "" {
		return false
	}
	n, err := strconv.Atoi(body)
	if err != nil {
		return false
	}
	return RUTCheckDigit(n) == id[len(id)-1:]
}

var digits = "0123456789"

// GenerateUsernameFromName arma un usuario con la inicial del nombre y el primer
// apellido. Los nombres en caracteres chinos se transliteran a pinyin.
func GenerateUsernameFromName(fullName string) string {
	parts := pinyin.LazyConvert(fullName, nil)
	if len(parts) == 0 {
		parts = strings.Fields(strings.ToLower(identity.NormalizeName(fullName)))
	}

	username := ""
	for i, part := range parts {
		part = asciiLetters(part)
		if part == "" {
			continue
		}
		if i == 0 && len(parts) > 1 {
			username += part[:1]
			continue
		}
		username += part
		if len(parts) > 2 {
			break
		}
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func asciiLetters(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func GenerateRandomPhone() string {
	return fmt.Sprintf("+56 9 %04d %04d", rand.Intn(10000), rand.Intn(10000))
}

func GenerateRandomAddress() (string, string) {
	street := streets[rand.Intn(len(streets))]
	return fmt.Sprintf("%s %d", street, rand.Intn(9000)+100), communes[rand.Intn(len(communes))]
}

// GenerateRandomProfile deja sin RUT a uno de cada cuatro perfiles, para ejercitar
// el completado desde planillas.
func GenerateRandomProfile(emailDomainName string) *domain.Profile {
	fullName := GenerateRandomName()
	username := GenerateUsernameFromName(fullName)
	address, commune := GenerateRandomAddress()

	nationalID := ""
	if rand.Intn(4) > 0 {
		nationalID = identity.NormalizeIdentifier(GenerateRandomRUT())
	}

	return &domain.Profile{
		Username:   username,
		FullName:   fullName,
		NationalID: nationalID,
		Email:      username + "@" + emailDomainName,
		Phone:      GenerateRandomPhone(),
		Address:    address,
		Commune:    commune,
		Role:       GenerateRandomRole(),
	}
}

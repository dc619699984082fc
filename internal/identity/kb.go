package identity

import "strings"

type Source string

const (
	SourceProfile Source = "profile"
	SourcePredata Source = "predata"
)

// SourceRecord es una fila sin confianza de alguna de las fuentes (perfiles o precarga).
type SourceRecord struct {
	Source     Source
	Ref        string // clave de la fila en su tabla de origen
	Identifier string
	Name       string
	Email      string
	Phone      string
	Address    string
	Commune    string
}

// IdentityRecord representa a una persona real. Identifier y Email se guardan normalizados.
type IdentityRecord struct {
	Identifier string   `json:"identifier"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Address    string   `json:"address"`
	Commune    string   `json:"commune"`
	ProfileID  string   `json:"profileID"` // vacío si la persona no tiene perfil
	Sources    []Source `json:"sources"`
}

// KnowledgeBase es el directorio combinado. Los dos índices apuntan a los mismos
// registros de Records, nunca a copias.
type KnowledgeBase struct {
	ByIdentifier     map[string]*IdentityRecord
	ByName           map[string]*IdentityRecord
	ByIdentifierBody map[string]*IdentityRecord

	// Records conserva el orden de creación para que los recorridos lineales
	// sean deterministas.
	Records []*IdentityRecord
}

type BuildOptions struct {
	// Authoritative es la fuente que gana los conflictos de campos. Por defecto SourceProfile.
	Authoritative Source
}

// Largos mínimos para que un valor de la fuente autoritativa pise uno conocido.
const (
	minAddressLen = 3
	minCommuneLen = 3
	minPhoneLen   = 6
)

// BuildKB combina las fuentes en un directorio nuevo. Primero se mezcla la capa base
// (la fuente no autoritativa), que solo rellena campos vacíos; después la autoritativa,
// que sobrescribe con valores no triviales.
func BuildKB(profileRecords, predataRecords []SourceRecord, opts BuildOptions) *KnowledgeBase {
	kb := &KnowledgeBase{
		ByIdentifier:     make(map[string]*IdentityRecord),
		ByName:           make(map[string]*IdentityRecord),
		ByIdentifierBody: make(map[string]*IdentityRecord),
		Records:          make([]*IdentityRecord, 0, len(profileRecords)+len(predataRecords)),
	}

	authoritative := opts.Authoritative
	if authoritative == "" {
		authoritative = SourceProfile
	}

	base, top := predataRecords, profileRecords
	baseSource, topSource := SourcePredata, SourceProfile
	if authoritative == SourcePredata {
		base, top = profileRecords, predataRecords
		baseSource, topSource = SourceProfile, SourcePredata
	}

	for _, rec := range base {
		if rec.Source == "" {
			rec.Source = baseSource
		}
		kb.merge(rec, false)
	}
	for _, rec := range top {
		if rec.Source == "" {
			rec.Source = topSource
		}
		kb.merge(rec, true)
	}

	return kb
}

func (kb *KnowledgeBase) Len() int {
	return len(kb.Records)
}

func (kb *KnowledgeBase) merge(src SourceRecord, authoritative bool) {
	id := NormalizeIdentifier(src.Identifier)
	nameKey := NormalizeName(src.Name)
	if id == "" && nameKey == "" {
		// sin identificador ni nombre no hay forma de volver a encontrarlo
		return
	}

	rec := kb.lookup(id, nameKey)
	if rec == nil {
		rec = &IdentityRecord{}
		kb.Records = append(kb.Records, rec)
	}

	name := strings.Join(strings.Fields(src.Name), " ")
	email := NormalizeEmail(src.Email)
	phone := strings.TrimSpace(src.Phone)
	address := strings.TrimSpace(src.Address)
	commune := strings.TrimSpace(src.Commune)

	set := fill
	if authoritative {
		set = overwrite
	}
	set(&rec.Identifier, id, 1)
	set(&rec.Name, name, 1)
	set(&rec.Email, email, 1)
	set(&rec.Phone, phone, minPhoneLen)
	set(&rec.Address, address, minAddressLen)
	set(&rec.Commune, commune, minCommuneLen)

	if src.Source == SourceProfile && src.Ref != "" && rec.ProfileID == "" {
		rec.ProfileID = src.Ref
	}
	rec.Sources = append(rec.Sources, src.Source)

	kb.index(rec)
}

func (kb *KnowledgeBase) lookup(id, nameKey string) *IdentityRecord {
	if id != "" {
		if rec, ok := kb.ByIdentifier[id]; ok {
			return rec
		}
	}
	if nameKey != "" {
		if rec, ok := kb.ByName[nameKey]; ok {
			return rec
		}
	}
	return nil
}

// index registra el registro bajo sus claves actuales. Las claves anteriores se
// conservan como alias.
func (kb *KnowledgeBase) index(rec *IdentityRecord) {
	if rec.Identifier != "" {
		kb.ByIdentifier[rec.Identifier] = rec
		if body := IdentifierBody(rec.Identifier); body != "" {
			kb.ByIdentifierBody[body] = rec
		}
	}
	if key := NormalizeName(rec.Name); key != "" {
		kb.ByName[key] = rec
	}
}

// overwrite pisa el campo si el valor nuevo tiene al menos minLen caracteres.
func overwrite(field *string, value string, minLen int) {
	if len([]rune(value)) >= minLen {
		*field = value
	}
}

// fill solo completa campos vacíos. Los mínimos de largo rigen únicamente al pisar
// un valor conocido, así que aquí basta con que el valor no esté vacío.
func fill(field *string, value string, _ int) {
	if *field == "" && value != "" {
		*field = value
	}
}

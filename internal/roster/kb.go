package roster

import (
	"strconv"

	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
)

// KnowledgeBase arma el directorio de identidades con los perfiles como fuente
// autoritativa y la precarga como complemento.
func KnowledgeBase(profiles []*domain.Profile, predata []*domain.Predata) *identity.KnowledgeBase {
	profileRecords := make([]identity.SourceRecord, 0, len(profiles))
	for _, p := range profiles {
		profileRecords = append(profileRecords, identity.SourceRecord{
			Source:     identity.SourceProfile,
			Ref:        p.ID.String(),
			Identifier: p.NationalID,
			Name:       p.FullName,
			Email:      p.Email,
			Phone:      p.Phone,
			Address:    p.Address,
			Commune:    p.Commune,
		})
	}

	predataRecords := make([]identity.SourceRecord, 0, len(predata))
	for _, p := range predata {
		predataRecords = append(predataRecords, identity.SourceRecord{
			Source:     identity.SourcePredata,
			Ref:        strconv.FormatInt(p.ID, 10),
			Identifier: p.NationalID,
			Name:       p.FullName,
			Email:      p.Email,
			Phone:      p.Phone,
			Address:    p.Address,
			Commune:    p.Commune,
		})
	}

	return identity.BuildKB(profileRecords, predataRecords, identity.BuildOptions{Authoritative: identity.SourceProfile})
}

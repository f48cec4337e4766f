package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
)

type normalizedCreateAdoptionInput struct {
	AnimalID       int64  `json:"animalId"`
	ApplicantName  string `json:"applicantName"`
	ApplicantPhone string `json:"applicantPhone"`
}

// FingerprintCreateAdoption builds a deterministic hash of the create request payload (excluding the idempotency key).
func FingerprintCreateAdoption(input adoptiontypes.CreateAdoptionInput) (string, error) {
	payload, err := json.Marshal(normalizedCreateAdoptionInput{
		AnimalID:       input.AnimalID,
		ApplicantName:  strings.TrimSpace(input.ApplicantName),
		ApplicantPhone: strings.TrimSpace(input.ApplicantPhone),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

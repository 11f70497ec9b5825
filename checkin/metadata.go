package checkin

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"attendance-backend/models"
)

type metadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

type tokenMetadata struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Attributes  []metadataAttribute `json:"attributes"`
}

// buildTokenURI builds a self-contained metadata descriptor for the minted
// token: the JSON document is embedded in a base64 data URI, so reading the
// token metadata never requires another fetch.
func buildTokenURI(session *models.Session, wallet string) string {
	metadata := tokenMetadata{
		Name:        fmt.Sprintf("Attendance #%d", session.SessionNumber),
		Description: fmt.Sprintf("Attendance NFT for session %d on %s", session.SessionNumber, session.Date),
		Attributes: []metadataAttribute{
			{TraitType: "Session", Value: session.SessionNumber},
			{TraitType: "Date", Value: session.Date},
			{TraitType: "Wallet", Value: wallet},
		},
	}

	encoded, _ := json.Marshal(metadata)
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(encoded)
}

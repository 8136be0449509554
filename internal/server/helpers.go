package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"ipsec-confgen/internal/artifact"
	"ipsec-confgen/internal/generator"
	"ipsec-confgen/internal/presets"
	"ipsec-confgen/internal/vpn"
)

const maxBodyBytes = 64 << 10

var errBadRequest = errors.New("bad request")

// Control keys are request options rather than configuration fields.
const (
	keyFortiManagerMode = "fortimanager_mode"
	keyIncludePSK       = "include_psk"
	keySaveEncrypted    = "save_encrypted"
	keyPreset           = "preset"
)

type generatePayload struct {
	Fields           map[string]string `json:"fields"`
	FortiManagerMode flexBool          `json:"fortimanager_mode"`
	IncludePSK       flexBool          `json:"include_psk"`
	SaveEncrypted    flexBool          `json:"save_encrypted"`
	Preset           string            `json:"preset"`
}

// flexBool accepts JSON booleans as well as the string forms a form
// checkbox would send.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*b = flexBool(asBool)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("expected boolean, got %s", string(data))
	}
	*b = flexBool(vpn.FlagValue(asString))
	return nil
}

func decodeInput(w http.ResponseWriter, r *http.Request) (generator.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeJSONInput(r)
	}
	return decodeFormInput(r)
}

func decodeJSONInput(r *http.Request) (generator.Input, error) {
	var payload generatePayload
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return generator.Input{}, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if payload.Fields == nil {
		payload.Fields = map[string]string{}
	}
	return generator.Input{
		Fields:           payload.Fields,
		FortiManagerMode: bool(payload.FortiManagerMode),
		IncludePSK:       bool(payload.IncludePSK),
		SaveEncrypted:    bool(payload.SaveEncrypted),
		Preset:           strings.TrimSpace(payload.Preset),
	}, nil
}

func decodeFormInput(r *http.Request) (generator.Input, error) {
	if err := r.ParseForm(); err != nil {
		return generator.Input{}, fmt.Errorf("%w: invalid form body: %v", errBadRequest, err)
	}
	in := generator.Input{Fields: map[string]string{}}
	for key := range r.PostForm {
		value := r.PostForm.Get(key)
		switch key {
		case keyFortiManagerMode:
			in.FortiManagerMode = vpn.FlagValue(value)
		case keyIncludePSK:
			in.IncludePSK = vpn.FlagValue(value)
		case keySaveEncrypted:
			in.SaveEncrypted = vpn.FlagValue(value)
		case keyPreset:
			in.Preset = strings.TrimSpace(value)
		default:
			in.Fields[key] = value
		}
	}
	return in, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(data)
}

// writeError maps pipeline errors to responses. Validation detail is safe to
// return; anything else is logged and reported opaquely.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *vpn.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields(),
			"errors": verr.Errors,
		})
	case errors.Is(err, presets.ErrUnknownPreset), errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, artifact.ErrStorage):
		s.logger.WithError(err).Error("Artifact storage failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save configuration"})
	default:
		s.logger.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ansatz-ml/ansatz/internal/circuit"
	"github.com/ansatz-ml/ansatz/internal/config"
)

// Format constants.
const (
	MagicBytes      = "ANSZ"
	FormatVersion   = 1
	headerAlignment = 64 // Parameter data aligned for direct reads
	fixedPrefixSize = 4 + 4 + 8
)

// Meta records where in a training run the snapshot was taken.
type Meta struct {
	RunID     string    `json:"run_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Epoch     int       `json:"epoch"`
	Step      int       `json:"step"`
	BestLoss  float64   `json:"best_loss"`
}

// Snapshot is an immutable trained-model record: architecture manifest,
// parameter values, and the configuration (task type plus training
// hyperparameters) that produced them.
type Snapshot struct {
	Manifest circuit.Manifest
	Init     circuit.InitPolicy
	Params   []float64
	Config   config.Config
	Meta     Meta
}

// header is the JSON metadata block of a .ansz file.
type header struct {
	FormatVersion int                `json:"format_version"`
	Manifest      circuit.Manifest   `json:"manifest"`
	Init          circuit.InitPolicy `json:"init"`
	Config        config.Config      `json:"config"`
	Meta          Meta               `json:"meta"`
	ParamCount    int                `json:"param_count"`
}

// Save writes the snapshot to path, stamping CreatedAt if unset.
func Save(s *Snapshot, path string) error {
	file, err := os.Create(path) //nolint:gosec // Destination comes from the caller.
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer file.Close()

	if err := write(s, file); err != nil {
		return err
	}
	return file.Sync()
}

func write(s *Snapshot, w io.Writer) error {
	if len(s.Params) != s.Manifest.ParamCount() {
		return &SerializationError{
			Reason: fmt.Sprintf("parameter vector has %d entries, manifest declares %d",
				len(s.Params), s.Manifest.ParamCount()),
		}
	}

	meta := s.Meta
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	headerJSON, err := json.Marshal(header{
		FormatVersion: FormatVersion,
		Manifest:      s.Manifest,
		Init:          s.Init,
		Config:        s.Config,
		Meta:          meta,
		ParamCount:    len(s.Params),
	})
	if err != nil {
		return fmt.Errorf("snapshot: marshal header: %w", err)
	}

	if _, err := w.Write([]byte(MagicBytes)); err != nil {
		return fmt.Errorf("snapshot: write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("snapshot: write version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("snapshot: write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	pos := int64(fixedPrefixSize) + int64(len(headerJSON))
	if padding := (headerAlignment - pos%headerAlignment) % headerAlignment; padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("snapshot: write padding: %w", err)
		}
	}

	buf := make([]byte, 8*len(s.Params))
	for i, p := range s.Params {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(p))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("snapshot: write parameters: %w", err)
	}
	return nil
}

// Load reads a snapshot from path, verifying magic, version, and parameter
// count before returning it.
func Load(path string) (*Snapshot, error) {
	file, err := os.Open(path) //nolint:gosec // Source comes from the caller.
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer file.Close()
	return read(file, path)
}

func read(r io.Reader, path string) (*Snapshot, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, &SerializationError{Path: path, Reason: "truncated prefix", Err: err}
	}
	if string(magic) != MagicBytes {
		return nil, &SerializationError{
			Path:   path,
			Reason: fmt.Sprintf("magic %q, want %q", magic, MagicBytes),
			Err:    ErrInvalidMagic,
		}
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, &SerializationError{Path: path, Reason: "truncated prefix", Err: err}
	}
	if version != FormatVersion {
		return nil, &SerializationError{
			Path:   path,
			Reason: fmt.Sprintf("format version %d, this build reads %d", version, FormatVersion),
			Err:    ErrUnsupportedVersion,
		}
	}

	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, &SerializationError{Path: path, Reason: "truncated prefix", Err: err}
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, &SerializationError{Path: path, Reason: "truncated header", Err: err}
	}
	var h header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return nil, &SerializationError{Path: path, Reason: fmt.Sprintf("malformed header: %v", err)}
	}
	if h.ParamCount != h.Manifest.ParamCount() {
		return nil, &SerializationError{
			Path: path,
			Reason: fmt.Sprintf("header declares %d parameters, manifest requires %d",
				h.ParamCount, h.Manifest.ParamCount()),
		}
	}

	pos := int64(fixedPrefixSize) + int64(headerSize)
	if padding := (headerAlignment - pos%headerAlignment) % headerAlignment; padding > 0 {
		if _, err := io.CopyN(io.Discard, r, padding); err != nil {
			return nil, &SerializationError{Path: path, Reason: "truncated padding", Err: err}
		}
	}

	buf := make([]byte, 8*h.ParamCount)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &SerializationError{Path: path, Reason: "truncated parameter data", Err: err}
	}
	params := make([]float64, h.ParamCount)
	for i := range params {
		params[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}

	return &Snapshot{
		Manifest: h.Manifest,
		Init:     h.Init,
		Params:   params,
		Config:   h.Config,
		Meta:     h.Meta,
	}, nil
}

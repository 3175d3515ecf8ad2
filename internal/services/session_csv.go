package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"deepwork/report-generator/internal/models"
)

// Non-emotion columns every upload must carry. Emotion columns (and their
// averages) come from the canonical key set.
var requiredColumns = []string{
	"kisi_adi",
	"mulakat_adi",
	"llm_skoru",
	"avg_llm_skoru",
	"ekran_disi_sure_sn",
	"avg_ekran_disi_sure_sn",
	"ekran_disi_sayisi",
	"avg_ekran_disi_sayisi",
	"soru",
	"cevap",
	"tip",
}

type SessionParserService interface {
	ParseSession(r io.Reader) (*models.SessionRecord, error)
}

type sessionParserService struct{}

func NewSessionParserService() SessionParserService {
	return &sessionParserService{}
}

// ParseSession reads the header and the first data row of a CSV upload into
// a validated SessionRecord. Additional rows are ignored.
func (p *sessionParserService) ParseSession(r io.Reader) (*models.SessionRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns: %s", ErrValidation, strings.Join(missing, ", "))
	}

	row, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no data rows", ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}

	rec, err := buildRecord(columns, row)
	if err != nil {
		return nil, err
	}

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return rec, nil
}

func missingColumns(columns map[string]int) []string {
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	for _, key := range models.EmotionKeys {
		if _, ok := columns[key.Column()]; !ok {
			missing = append(missing, key.Column())
		}
		if _, ok := columns[key.AverageColumn()]; !ok {
			missing = append(missing, key.AverageColumn())
		}
	}
	return missing
}

func buildRecord(columns map[string]int, row []string) (*models.SessionRecord, error) {
	cell := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var parseErr error
	number := func(name string) float64 {
		v, err := strconv.ParseFloat(cell(name), 64)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("%w: column %s: %v", ErrInputFormat, name, err)
		}
		return round2(v)
	}
	integer := func(name string) int {
		return int(math.Round(number(name)))
	}

	rec := &models.SessionRecord{
		PersonName:          cell("kisi_adi"),
		SessionName:         cell("mulakat_adi"),
		Score:               number("llm_skoru"),
		AvgScore:            number("avg_llm_skoru"),
		OffScreenSeconds:    number("ekran_disi_sure_sn"),
		AvgOffScreenSeconds: number("avg_ekran_disi_sure_sn"),
		OffScreenCount:      integer("ekran_disi_sayisi"),
		AvgOffScreenCount:   integer("avg_ekran_disi_sayisi"),
		Question:            cell("soru"),
		Answer:              cell("cevap"),
		Kind:                models.ReportKind(integer("tip")),
		Emotions: models.EmotionRecord{
			Values:   make(map[models.EmotionKey]float64, len(models.EmotionKeys)),
			Averages: make(map[models.EmotionKey]float64, len(models.EmotionKeys)),
		},
	}

	for _, key := range models.EmotionKeys {
		rec.Emotions.Values[key] = number(key.Column())
		rec.Emotions.Averages[key] = number(key.AverageColumn())
	}

	if parseErr != nil {
		return nil, parseErr
	}

	if rec.PersonName == "" || rec.SessionName == "" {
		return nil, fmt.Errorf("%w: kisi_adi and mulakat_adi must not be empty", ErrValidation)
	}

	return rec, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

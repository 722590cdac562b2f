/*
* Schema-validated JSON report
* Copyright (C) 2025  Artem Stefankiv
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Gilah-EnE/sampen_scanner/internal/scanner"
)

//go:embed schema.json
var schemaSource string

const schemaURL = "https://github.com/Gilah-EnE/sampen_scanner/report.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func reportSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, schemaSource)
	})
	return schema, schemaErr
}

// Number is a float that encodes non-finite values as "infinite".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return []byte(`"infinite"`), nil
	}
	return json.Marshal(v)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == `"infinite"` {
		*n = Number(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number(v)
	return nil
}

// Document is the JSON report.
type Document struct {
	RunID      string     `json:"run_id"`
	Root       string     `json:"root"`
	Started    time.Time  `json:"started"`
	Finished   time.Time  `json:"finished"`
	Parameters Parameters `json:"parameters"`
	Files      int        `json:"files"`
	Analyzed   int        `json:"analyzed"`
	Groups     []Group    `json:"groups"`
	Skipped    []Skipped  `json:"skipped"`
}

type Parameters struct {
	ShingleLength    int     `json:"shingle_length"`
	ComparisonLength int     `json:"comparison_length"`
	Tolerance        float64 `json:"tolerance"`
	Threshold        float64 `json:"threshold"`
}

type Group struct {
	Group     string    `json:"group"`
	Type      string    `json:"type"`
	Count     int       `json:"count"`
	Finite    int       `json:"finite"`
	Mean      Number    `json:"mean"`
	StdDev    Number    `json:"std_dev"`
	Anomalies []Anomaly `json:"anomalies"`
}

type Anomaly struct {
	Path               string   `json:"path"`
	Entropy            Number   `json:"entropy"`
	ZScore             Number   `json:"z_score"`
	SignatureConfirmed bool     `json:"signature_confirmed"`
	Digest             string   `json:"digest,omitempty"`
	Details            *Details `json:"details,omitempty"`
}

type Details struct {
	ContentType      string         `json:"content_type,omitempty"`
	Shannon          Number         `json:"shannon"`
	ChiSquare        Number         `json:"chi_square"`
	KSStatistic      Number         `json:"ks_statistic"`
	Autocorrelation  Number         `json:"autocorrelation"`
	CompressionRatio Number         `json:"compression_ratio"`
	SignatureDensity Number         `json:"signature_density"`
	EncryptionTools  map[string]int `json:"encryption_tools"`
	Votes            int            `json:"votes"`
	LikelyEncrypted  bool           `json:"likely_encrypted"`
}

type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// NewDocument converts res.
func NewDocument(res *scanner.Result) Document {
	doc := Document{
		RunID:    res.ID.String(),
		Root:     res.Root,
		Started:  res.Started.UTC(),
		Finished: res.Finished.UTC(),
		Parameters: Parameters{
			ShingleLength:    res.Options.ShingleLength,
			ComparisonLength: res.Options.ComparisonLength,
			Tolerance:        res.Options.Tolerance,
			Threshold:        res.Options.Threshold,
		},
		Files:    res.Files,
		Analyzed: res.Analyzed(),
		Groups:   []Group{},
		Skipped:  []Skipped{},
	}

	for _, g := range res.Groups {
		group := Group{
			Group:     g.Key.String(),
			Type:      g.Key.Type,
			Count:     g.Stats.Count,
			Finite:    g.Stats.Finite,
			Mean:      Number(g.Stats.Mean),
			StdDev:    Number(g.Stats.StdDev),
			Anomalies: []Anomaly{},
		}
		for _, f := range g.Findings {
			a := Anomaly{
				Path:               f.Path,
				Entropy:            Number(f.Entropy),
				ZScore:             Number(f.ZScore),
				SignatureConfirmed: f.SignatureConfirmed,
				Digest:             f.Digest,
			}
			if d := f.Details; d != nil {
				a.Details = &Details{
					ContentType:      d.ContentType,
					Shannon:          Number(d.Shannon),
					ChiSquare:        Number(d.ChiSquare),
					KSStatistic:      Number(d.KSStatistic),
					Autocorrelation:  Number(d.Autocorrelation),
					CompressionRatio: Number(d.CompressionRatio),
					SignatureDensity: Number(d.SignatureDensity),
					EncryptionTools:  d.EncryptionTools,
					Votes:            d.Votes,
					LikelyEncrypted:  d.LikelyEncrypted,
				}
				if a.Details.EncryptionTools == nil {
					a.Details.EncryptionTools = map[string]int{}
				}
			}
			group.Anomalies = append(group.Anomalies, a)
		}
		doc.Groups = append(doc.Groups, group)
	}

	for _, s := range res.Skipped {
		doc.Skipped = append(doc.Skipped, Skipped{Path: s.Path, Reason: s.Reason()})
	}
	return doc
}

// Validate checks encoded report data against the embedded schema.
func Validate(data []byte) error {
	sch, err := reportSchema()
	if err != nil {
		return fmt.Errorf("compile report schema: %w", err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	if err := sch.Validate(instance); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}

// JSON writes the validated JSON report of res.
func JSON(w io.Writer, res *scanner.Result) error {
	data, err := json.MarshalIndent(NewDocument(res), "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := Validate(data); err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteFile writes the JSON report of res to path.
func WriteFile(path string, res *scanner.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := JSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

/*
* Colored console report
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

// Package report renders scan results to the console and as JSON.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fatih/color"

	"github.com/Gilah-EnE/sampen_scanner/internal/anomaly"
	"github.com/Gilah-EnE/sampen_scanner/internal/scanner"
	"github.com/Gilah-EnE/sampen_scanner/internal/sigscan"
)

// TextOptions control the console report.
type TextOptions struct {
	Color bool
	// Verbose adds per-group statistics and the skipped files.
	Verbose bool
}

type printer struct {
	w   io.Writer
	err error

	infoColor, successColor, warningColor, errorColor, alertColor func(a ...interface{}) string
}

func newPrinter(w io.Writer, colored bool) *printer {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return &printer{
		w:            w,
		infoColor:    mk(color.FgBlue),
		successColor: mk(color.FgGreen),
		warningColor: mk(color.FgYellow),
		errorColor:   mk(color.FgRed),
		alertColor:   mk(color.FgRed, color.Bold),
	}
}

func (p *printer) line(prefix, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	if prefix != "" {
		_, p.err = fmt.Fprintf(p.w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) info(format string, args ...interface{}) {
	p.line(p.infoColor("[*]"), format, args...)
}

func (p *printer) success(format string, args ...interface{}) {
	p.line(p.successColor("[+]"), format, args...)
}

func (p *printer) warning(format string, args ...interface{}) {
	p.line(p.warningColor("[!]"), format, args...)
}

func (p *printer) error(format string, args ...interface{}) {
	p.line(p.errorColor("[-]"), format, args...)
}

func (p *printer) alert(format string, args ...interface{}) {
	p.line(p.alertColor("[!!!]"), format, args...)
}

// FormatFloat renders v, spelling out non-finite values as "infinite".
func FormatFloat(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "infinite"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Text writes the console report of res.
func Text(w io.Writer, res *scanner.Result, opts TextOptions) error {
	p := newPrinter(w, opts.Color)

	if res.Files == 0 {
		p.error("No files found in the directory.")
		return p.err
	}

	if opts.Verbose {
		for _, g := range res.Profiles {
			stats, ok, err := anomaly.Summarize(g.Entries)
			if err != nil {
				return err
			}
			if !ok {
				p.info("File group: %s (no finite entropy)", g.Key)
				continue
			}
			p.info("File group: %s", g.Key)
			p.line("", "    Mean entropy: %s", FormatFloat(stats.Mean))
			p.line("", "    Standard deviation: %s", FormatFloat(stats.StdDev))
		}
		for _, skip := range res.Skipped {
			p.warning("Skipped %s: %s", skip.Path, skip.Reason())
		}
	}

	if len(res.Groups) == 0 {
		p.success("No anomalies detected.")
	}
	for _, g := range res.Groups {
		p.alert("Anomalies detected in %s files:", g.Key)
		for _, f := range g.Findings {
			p.line("", "    File: %s", f.Path)
			p.line("", "    Entropy: %s", FormatFloat(f.Entropy))
			p.line("", "    Z-score: %s", FormatFloat(f.ZScore))
			if f.SignatureConfirmed {
				p.line("", "    %s", p.successColor("Signature Match"))
			} else {
				p.line("", "    %s", p.errorColor("Signature Mismatch"))
			}
			if f.Details != nil {
				writeDetails(p, f.Details)
			}
			p.line("", "")
		}
	}

	p.info("Scanned %d files: %d analyzed, %d skipped, %d anomalies",
		res.Files, res.Analyzed(), len(res.Skipped), res.Anomalies())
	return p.err
}

func writeDetails(p *printer, d *scanner.Details) {
	if d.ContentType != "" {
		p.line("", "    Content type: %s", d.ContentType)
	}
	p.line("", "    Shannon entropy: %.4f bits/byte", d.Shannon)
	p.line("", "    Chi-square: %.2f", d.ChiSquare)
	p.line("", "    KS statistic: %.4f", d.KSStatistic)
	p.line("", "    Autocorrelation: %.4f", d.Autocorrelation)
	p.line("", "    Compression ratio: %.4f", d.CompressionRatio)
	p.line("", "    Embedded signatures: %.2f per MiB", d.SignatureDensity)
	if len(d.EncryptionTools) > 0 {
		p.line("", "    Encryption tools: %s", p.warningColor(sigscan.Readable(d.EncryptionTools)))
	}
	verdict := "not encrypted"
	if d.LikelyEncrypted {
		verdict = p.warningColor("likely encrypted or compressed")
	}
	p.line("", "    Votes: %d (%s)", d.Votes, verdict)
}

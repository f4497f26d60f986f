// elPloidy: a haplotype-based tool for classifying the origin of
// chromosomal aneuploidies from low-coverage sequencing data.
// Copyright (c) 2021-2022 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elploidy/blob/master/LICENSE.txt>.

package llr

import (
	"time"

	"github.com/exascience/elploidy/ancestry"
	"github.com/exascience/elploidy/obs"
	"github.com/exascience/elploidy/panel"
	"github.com/exascience/elploidy/utils"
	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"
)

// Engine evaluates one chromosome: it partitions the observed positions
// into genomic windows and scores every window's reads against the
// reference haplotypes under the competing ploidy scenarios. After the
// inputs are loaded, windows are independent units of work; the engine
// shares only read-only state between workers.
type Engine struct {
	Reference *panel.Panel
	Table     *obs.Table
	Mixture   *ancestry.Mixture
	Params    Params
}

// NewEngine returns an engine over a loaded reference panel,
// observation table, and resolved ancestry mixture.
func NewEngine(reference *panel.Panel, table *obs.Table, mixture *ancestry.Mixture, params Params) *Engine {
	return &Engine{
		Reference: reference,
		Table:     table,
		Mixture:   mixture,
		Params:    params,
	}
}

// Run validates the parameters and evaluates all windows on a parallel
// worker pool. Window results are stored at their window's index, so
// the output order is the ascending genomic order no matter in which
// order the workers complete, and repeated runs with the same seed
// produce identical reports.
func (engine *Engine) Run() (*Report, error) {
	if err := engine.Params.Validate(); err != nil {
		return nil, err
	}
	scorer := NewScorer(engine.Reference, engine.Mixture, engine.Table, engine.Params.MinHF, engine.Params.MinScore)
	windows := Partition(scorer.Reads(), engine.Params.WindowSize, engine.Params.Offset, engine.Params.MinReads)
	model := NewModel(scorer)
	results := make([]Result, len(windows))
	parallel.Range(0, len(windows), 0, func(low, high int) {
		for i := low; i < high; i++ {
			results[i] = EvaluateWindow(model, windows[i], engine.Params)
		}
	})
	return &Report{
		RunID:           uuid.New().String(),
		Program:         utils.ProgramName,
		Version:         utils.ProgramVersion,
		Created:         time.Now(),
		Mixture:         engine.Mixture.String(),
		Params:          engine.Params,
		MatchedFraction: engine.Table.MatchedFraction(),
		NSNPs:           engine.Reference.NSNPs(),
		NHaplotypes:     engine.Reference.NHaplotypes(),
		Windows:         results,
		Summary:         Summarize(results),
	}, nil
}

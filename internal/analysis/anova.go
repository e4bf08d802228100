package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Group is a named sample; in a table each selected column is a group.
type Group struct {
	Name   string
	Values []float64
}

// GroupTotal is the per-group breakdown reported with an ANOVA.
type GroupTotal struct {
	Name  string  `json:"name"`
	N     int     `json:"n"`
	Total float64 `json:"total"`
	Mean  float64 `json:"mean"`
}

// ANOVAResult is a one-way analysis of variance table.
type ANOVAResult struct {
	Groups []GroupTotal `json:"groups"`
	// T is the grand total, N the total count and CF = T²/N.
	T  float64 `json:"t"`
	N  int     `json:"n"`
	CF float64 `json:"cf"`

	SST float64 `json:"sst"`
	SSB float64 `json:"ssb"`
	SSW float64 `json:"ssw"`

	DFBetween int `json:"df_between"`
	DFWithin  int `json:"df_within"`
	DFTotal   int `json:"df_total"`

	MSB float64 `json:"msb"`
	MSW float64 `json:"msw"`
	F   float64 `json:"f"`
	P   float64 `json:"p"`
}

// ANOVA runs a one-way analysis of variance over the groups, which may
// differ in size.
func ANOVA(groups []Group) (*ANOVAResult, error) {
	if len(groups) < 2 {
		return nil, fmt.Errorf("anova needs at least 2 groups, got %d: %w", len(groups), ErrInsufficientData)
	}
	res := &ANOVAResult{}
	var sumSq, between float64
	for _, g := range groups {
		if len(g.Values) == 0 {
			return nil, fmt.Errorf("anova group %q: %w", g.Name, ErrInsufficientData)
		}
		tj := floats.Sum(g.Values)
		nj := len(g.Values)
		res.Groups = append(res.Groups, GroupTotal{Name: g.Name, N: nj, Total: tj, Mean: tj / float64(nj)})
		res.T += tj
		res.N += nj
		sumSq += floats.Dot(g.Values, g.Values)
		between += tj * tj / float64(nj)
	}
	k := len(groups)
	res.CF = res.T * res.T / float64(res.N)
	res.SST = sumSq - res.CF
	res.SSB = between - res.CF
	res.SSW = res.SST - res.SSB

	res.DFBetween = k - 1
	res.DFWithin = res.N - k
	res.DFTotal = res.N - 1
	if res.DFWithin == 0 {
		return nil, fmt.Errorf("anova: one value per group leaves no within-group freedom: %w", ErrInsufficientData)
	}
	res.MSB = res.SSB / float64(res.DFBetween)
	res.MSW = res.SSW / float64(res.DFWithin)
	if res.MSW == 0 {
		return nil, fmt.Errorf("anova: %w within groups", ErrZeroVariance)
	}
	res.F = res.MSB / res.MSW
	fd := distuv.F{D1: float64(res.DFBetween), D2: float64(res.DFWithin)}
	res.P = fd.Survival(res.F)
	return res, nil
}

// CriticalF returns the upper critical value of the F distribution for the
// result's degrees of freedom at significance alpha.
func (r *ANOVAResult) CriticalF(alpha float64) (float64, error) {
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("alpha %v: %w", alpha, ErrInvalidArgument)
	}
	fd := distuv.F{D1: float64(r.DFBetween), D2: float64(r.DFWithin)}
	return fd.Quantile(1 - alpha), nil
}

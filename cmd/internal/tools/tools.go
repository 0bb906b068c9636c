package tools

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/nathanhack/eccsweep/benchmarking"
)

//SweepResults is the results file of a sweep. It is also the checkpoint a sweep resumes from.
type SweepResults struct {
	TypeInfo    string
	ECCInfo     string
	PayloadInfo string
	Stats       map[float64]benchmarking.RateStats
}
type sweepResults struct {
	TypeInfo    string
	ECCInfo     string
	PayloadInfo string
	Stats       map[string]benchmarking.RateStats
}

func (s *SweepResults) MarshalJSON() ([]byte, error) {
	ss := sweepResults{
		TypeInfo:    s.TypeInfo,
		ECCInfo:     s.ECCInfo,
		PayloadInfo: s.PayloadInfo,
		Stats:       map[string]benchmarking.RateStats{},
	}

	for f, stat := range s.Stats {
		ss.Stats[fmt.Sprintf("%v", f)] = stat
	}

	return json.Marshal(ss)
}

func (s *SweepResults) UnmarshalJSON(bytes []byte) error {
	var ss sweepResults

	err := json.Unmarshal(bytes, &ss)
	if err != nil {
		return err
	}

	s.TypeInfo = ss.TypeInfo
	s.ECCInfo = ss.ECCInfo
	s.PayloadInfo = ss.PayloadInfo
	s.Stats = map[float64]benchmarking.RateStats{}

	for fs, stat := range ss.Stats {
		f, err := strconv.ParseFloat(fs, 64)
		if err != nil {
			return err
		}
		s.Stats[f] = stat
	}
	return nil
}

//Sorted returns the stats in increasing rate order.
func (s *SweepResults) Sorted() []benchmarking.RateStats {
	result := make([]benchmarking.RateStats, 0, len(s.Stats))
	for _, stat := range s.Stats {
		result = append(result, stat)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Rate < result[j].Rate
	})
	return result
}

//Completed picks out the stats of the grid rates that already ran every trial.
func (s *SweepResults) Completed(grid benchmarking.RateGrid, trials int) map[benchmarking.Rate]benchmarking.RateStats {
	completed := map[benchmarking.Rate]benchmarking.RateStats{}
	for _, r := range grid {
		if stat, has := s.Stats[r.Value()]; has && stat.Trials == trials {
			completed[r] = stat
		}
	}
	return completed
}

//SameExperiment is true when both results come from the same decoder settings,
// code and payload.
func (s *SweepResults) SameExperiment(other *SweepResults) bool {
	return s.TypeInfo == other.TypeInfo && s.ECCInfo == other.ECCInfo && s.PayloadInfo == other.PayloadInfo
}

func Md5Sum(bs []byte) string {
	return fmt.Sprintf("%x", md5.Sum(bs))
}

func FileMd5Sum(filepath string) (string, error) {
	bs, err := os.ReadFile(filepath)
	if err != nil {
		return "", fmt.Errorf("error while reading file %v: %w", filepath, err)
	}
	return Md5Sum(bs), nil
}

//LoadResults reads a results file. A missing file gives nil results and no error.
func LoadResults(filepath string) (*SweepResults, error) {
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return nil, nil
	}

	bs, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error while reading file %v: %w", filepath, err)
	}

	var stat SweepResults
	err = json.Unmarshal(bs, &stat)
	if err != nil {
		return nil, fmt.Errorf("error while unmarshalling file %v: %w", filepath, err)
	}
	return &stat, nil
}

//SaveResults writes the results through a temporary file so an interrupted
// save never leaves a truncated checkpoint behind.
func SaveResults(filepath string, data *SweepResults) error {
	bs, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error serializing results: %w", err)
	}

	tmp := filepath + ".tmp"
	err = os.WriteFile(tmp, bs, 0644)
	if err != nil {
		return fmt.Errorf("error while saving results to %v: %w", filepath, err)
	}
	if err = os.Rename(tmp, filepath); err != nil {
		return fmt.Errorf("error while saving results to %v: %w", filepath, err)
	}
	return nil
}

//LoadAll loads every results file. Unlike LoadResults a missing file is an error.
func LoadAll(filepaths []string) ([]*SweepResults, error) {
	stats := make([]*SweepResults, len(filepaths))
	for i, resultFile := range filepaths {
		s, err := LoadResults(resultFile)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("results file %v does not exist", resultFile)
		}
		stats[i] = s
	}
	return stats, nil
}

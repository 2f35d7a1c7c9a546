package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/pkg/constants"
	customErr "github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/solution"
)

// SuiteStore persists test suites on disk, one directory per problem holding
// input_N.txt / output_N.txt pairs or a single suite.toml / suite.yaml.
type SuiteStore interface {
	ListProblems() ([]string, error)
	LoadSuite(problem string) (solution.TestSuite, error)
	// AddTestCase stores a new pair under the next free index and returns it.
	AddTestCase(problem, input, expected string) (int, error)
	// ImportExamples splits text into consecutive input/expected line pairs
	// stored as cases 1..n, replacing those indices.
	ImportExamples(problem, text string) (int, error)
}

type suiteStore struct {
	root   string
	logger *zap.SugaredLogger
}

func NewSuiteStore(root string) SuiteStore {
	if root == "" {
		root = constants.DefaultSuitesDir
	}
	return &suiteStore{
		root:   root,
		logger: logger.NewNamedLogger("suite-store"),
	}
}

func (s *suiteStore) ListProblems() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.root, err)
	}

	problems := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			problems = append(problems, entry.Name())
		}
	}
	sort.Strings(problems)
	return problems, nil
}

func (s *suiteStore) LoadSuite(problem string) (solution.TestSuite, error) {
	dir, err := s.problemDir(problem)
	if err != nil {
		return solution.TestSuite{}, err
	}
	if _, err := os.Stat(dir); err != nil {
		return solution.TestSuite{}, fmt.Errorf("%w: %s", customErr.ErrProblemNotFound, problem)
	}

	indices, err := inputIndices(dir)
	if err != nil {
		return solution.TestSuite{}, err
	}
	if len(indices) == 0 {
		for _, name := range []string{constants.TOMLSuiteFileName, constants.YAMLSuiteFileName} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			suite, err := LoadSuiteFile(path)
			if err != nil {
				return solution.TestSuite{}, err
			}
			if suite.Problem == "" {
				suite.Problem = problem
			}
			return suite, nil
		}
	}

	suite := solution.TestSuite{Problem: problem, Cases: make([]solution.TestCase, 0, len(indices))}
	for _, idx := range indices {
		input, err := os.ReadFile(filepath.Join(dir, caseFileName(constants.InputFilePrefix, idx)))
		if err != nil {
			return solution.TestSuite{}, fmt.Errorf("failed to read input %d of %s: %w", idx, problem, err)
		}
		expected, err := os.ReadFile(filepath.Join(dir, caseFileName(constants.OutputFilePrefix, idx)))
		if errors.Is(err, fs.ErrNotExist) {
			return solution.TestSuite{}, fmt.Errorf("%w: case %d of %s", customErr.ErrMissingExpectedOutput, idx, problem)
		}
		if err != nil {
			return solution.TestSuite{}, fmt.Errorf("failed to read output %d of %s: %w", idx, problem, err)
		}

		suite.Cases = append(suite.Cases, solution.TestCase{
			ID:             strconv.Itoa(idx),
			Input:          string(input),
			ExpectedOutput: string(expected),
		})
	}

	s.logger.Debugf("Loaded %d cases for %s", len(suite.Cases), problem)
	return suite, nil
}

func (s *suiteStore) AddTestCase(problem, input, expected string) (int, error) {
	input = strings.TrimSpace(input)
	expected = strings.TrimSpace(expected)
	if input == "" || expected == "" {
		return 0, customErr.ErrEmptyTestCase
	}

	dir, err := s.ensureProblemDir(problem)
	if err != nil {
		return 0, err
	}
	indices, err := inputIndices(dir)
	if err != nil {
		return 0, err
	}

	idx := 1
	if len(indices) > 0 {
		idx = indices[len(indices)-1] + 1
	}
	if err := writePair(dir, idx, input, expected); err != nil {
		return 0, err
	}

	s.logger.Infof("Added test case %d to %s", idx, problem)
	return idx, nil
}

func (s *suiteStore) ImportExamples(problem, text string) (int, error) {
	lines := make([]string, 0)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return 0, customErr.ErrEmptyTestCase
	}

	dir, err := s.ensureProblemDir(problem)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := 0; i < len(lines); i += 2 {
		expected := ""
		if i+1 < len(lines) {
			expected = lines[i+1]
		}
		count++
		if err := writePair(dir, count, lines[i], expected); err != nil {
			return count - 1, err
		}
	}

	s.logger.Infof("Imported %d example case(s) into %s", count, problem)
	return count, nil
}

// LoadSuiteFile reads a TOML or YAML suite file, chosen by extension. Cases
// without an id are numbered by position.
func LoadSuiteFile(path string) (solution.TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return solution.TestSuite{}, err
	}

	var suite solution.TestSuite
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &suite)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &suite)
	default:
		err = errors.New("unknown suite file extension")
	}
	if err != nil {
		return solution.TestSuite{}, fmt.Errorf("%w: %s: %w", customErr.ErrInvalidSuite, path, err)
	}
	for i := range suite.Cases {
		if suite.Cases[i].ID == "" {
			suite.Cases[i].ID = strconv.Itoa(i + 1)
		}
	}
	if err := suite.Validate(); err != nil {
		return solution.TestSuite{}, err
	}
	return suite, nil
}

func (s *suiteStore) problemDir(problem string) (string, error) {
	if problem == "" || problem != filepath.Base(problem) || problem == "." || problem == ".." {
		return "", fmt.Errorf("%w: invalid problem name %q", customErr.ErrProblemNotFound, problem)
	}
	return filepath.Join(s.root, problem), nil
}

func (s *suiteStore) ensureProblemDir(problem string) (string, error) {
	dir, err := s.problemDir(problem)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// inputIndices returns the sorted case numbers of the input files in dir.
func inputIndices(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	seen := mapset.NewThreadUnsafeSet[int]()
	indices := make([]int, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.InputFilePrefix) || !strings.HasSuffix(name, constants.TestFileExtension) {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, constants.InputFilePrefix), constants.TestFileExtension))
		if err != nil || idx <= 0 {
			continue
		}
		if !seen.Add(idx) {
			return nil, fmt.Errorf("%w: case %d is stored twice in %s", customErr.ErrInvalidSuite, idx, dir)
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

func writePair(dir string, idx int, input, expected string) error {
	if err := os.WriteFile(filepath.Join(dir, caseFileName(constants.InputFilePrefix, idx)), []byte(input), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, caseFileName(constants.OutputFilePrefix, idx)), []byte(expected), 0o644)
}

func caseFileName(prefix string, idx int) string {
	return prefix + strconv.Itoa(idx) + constants.TestFileExtension
}

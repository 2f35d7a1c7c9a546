package planner

import (
	"fmt"
	"path/filepath"

	"github.com/google/shlex"

	"github.com/mini-maxit/harness/internal/stages/executor"
	"github.com/mini-maxit/harness/pkg/constants"
	"github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/languages"
)

// Placeholders recognised in language command templates. Each must be a whole token.
const (
	placeholderSource = "{src}"
	placeholderBinary = "{bin}"
	placeholderDir    = "{dir}"
	placeholderFlags  = "{flags}"
)

type BuildPlan struct {
	SourcePath   string            `json:"source_path"`
	ArtifactPath string            `json:"artifact_path,omitempty"`
	Compile      *executor.Command `json:"compile,omitempty"`
	Run          executor.Command  `json:"run"`
}

// RequiresCompilation reports whether the plan has a compile step.
func (bp BuildPlan) RequiresCompilation() bool {
	return bp.Compile != nil
}

type Planner interface {
	Plan(lang languages.LanguageType, workingDir string) (BuildPlan, error)
}

type planner struct {
	extraFlags map[languages.LanguageType][]string
}

// NewPlanner returns a planner appending extraFlags to the compile step of
// the matching language.
func NewPlanner(extraFlags map[languages.LanguageType][]string) Planner {
	return &planner{extraFlags: extraFlags}
}

// Plan derives the commands for the wrapped source stored in workingDir. Templates
// are split before substitution, so a path with spaces or quotes stays one argument.
func (p *planner) Plan(lang languages.LanguageType, workingDir string) (BuildPlan, error) {
	def, err := lang.Definition()
	if err != nil {
		return BuildPlan{}, err
	}
	dir, err := filepath.Abs(workingDir)
	if err != nil {
		return BuildPlan{}, fmt.Errorf("%w: %w", errors.ErrWorkDir, err)
	}

	vars := map[string]string{
		placeholderSource: filepath.Join(dir, def.SourceFileName),
		placeholderDir:    dir,
	}
	plan := BuildPlan{SourcePath: vars[placeholderSource]}

	if def.CompileTemplate != "" {
		vars[placeholderBinary] = filepath.Join(dir, constants.BinaryFileName)
		compile, err := expand(def.CompileTemplate, vars, p.extraFlags[lang])
		if err != nil {
			return BuildPlan{}, err
		}
		compile.Image = def.DockerImage
		plan.Compile = &compile
		plan.ArtifactPath = vars[placeholderBinary]
	}

	run, err := expand(def.RunTemplate, vars, nil)
	if err != nil {
		return BuildPlan{}, err
	}
	run.Image = def.DockerImage
	plan.Run = run

	return plan, nil
}

func expand(tpl string, vars map[string]string, flags []string) (executor.Command, error) {
	fields, err := shlex.Split(tpl)
	if err != nil {
		return executor.Command{}, fmt.Errorf("failed to parse command template %q: %w", tpl, err)
	}

	argv := make([]string, 0, len(fields)+len(flags))
	for _, field := range fields {
		if field == placeholderFlags {
			argv = append(argv, flags...)
			continue
		}
		if value, ok := vars[field]; ok {
			argv = append(argv, value)
			continue
		}
		argv = append(argv, field)
	}
	if len(argv) == 0 {
		return executor.Command{}, errors.ErrEmptyCommand
	}

	return executor.Command{Name: argv[0], Args: argv[1:]}, nil
}

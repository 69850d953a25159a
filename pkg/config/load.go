package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"
)

// rawFile is the on-disk YAML shape, before expansion and validation.
type rawFile struct {
	Supervisor rawSupervisor    `yaml:"supervisor"`
	Include    []string         `yaml:"include"`
	Jobs       map[string]rawJob `yaml:"jobs"`
}

type rawSupervisor struct {
	WorkDir    string `yaml:"work_dir"`
	ControlDir string `yaml:"control_dir"`
	PidFile    string `yaml:"pid_file"`
	LogFile    string `yaml:"log_file"`
	LogLevel   string `yaml:"log_level"`
}

type rawJob struct {
	Command   string            `yaml:"command"`
	Stdin     string            `yaml:"stdin"`
	Stdout    string            `yaml:"stdout"`
	Stderr    string            `yaml:"stderr"`
	Env       map[string]string `yaml:"env"`
	Cwd       string            `yaml:"cwd"`
	Signal    string            `yaml:"signal"`
	Autostart bool              `yaml:"autostart"`
	Restart   bool              `yaml:"restart"`
}

var signalNames = map[string]syscall.Signal{
	"HUP":  syscall.SIGHUP,
	"INT":  syscall.SIGINT,
	"QUIT": syscall.SIGQUIT,
	"KILL": syscall.SIGKILL,
	"USR1": syscall.SIGUSR1,
	"USR2": syscall.SIGUSR2,
	"TERM": syscall.SIGTERM,
	"CONT": syscall.SIGCONT,
	"STOP": syscall.SIGSTOP,
}

// Load reads path, expands any `include:` globs relative to path's
// directory, applies shell-variable expansion, and validates the result.
// Job names defined by an earlier file (the top file counts as first)
// win over later ones, matching the layered-merge behavior of the source
// project's config handler.
func Load(path string) (*Config, error) {
	top, err := readRawFile(path)
	if err != nil {
		return nil, err
	}

	merged := map[string]rawJob{}
	order := []string{}
	mergeIn := func(jobs map[string]rawJob) {
		for name, j := range jobs {
			if _, exists := merged[name]; exists {
				continue
			}
			merged[name] = j
			order = append(order, name)
		}
	}
	mergeIn(top.Jobs)

	baseDir := filepath.Dir(path)
	for _, pattern := range top.Include {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("include %q: %w", pattern, err)
		}
		for _, match := range matches {
			included, err := readRawFile(match)
			if err != nil {
				return nil, err
			}
			mergeIn(included.Jobs)
		}
	}

	verrs := &ValidationError{}

	sup := Supervisor{
		WorkDir:    expand(top.Supervisor.WorkDir),
		ControlDir: expand(top.Supervisor.ControlDir),
		PidFile:    expand(top.Supervisor.PidFile),
		LogFile:    expand(top.Supervisor.LogFile),
		LogLevel:   top.Supervisor.LogLevel,
	}
	if sup.ControlDir == "" {
		verrs.add("supervisor.control_dir is required")
	}
	if sup.LogLevel == "" {
		sup.LogLevel = "info"
	}

	jobs := make(map[string]JobConfig, len(merged))
	for _, name := range order {
		raw := expandJob(merged[name])
		jc, errs := buildJob(name, raw)
		for _, e := range errs {
			verrs.add("job %q: %s", name, e)
		}
		jobs[name] = jc
	}

	if len(jobs) == 0 {
		verrs.add("no jobs defined")
	}

	if err := verrs.asError(); err != nil {
		return nil, err
	}

	return &Config{
		Supervisor: sup,
		Jobs:       jobs,
		JobOrder:   order,
	}, nil
}

func buildJob(name string, raw rawJob) (JobConfig, []string) {
	var problems []string

	if strings.TrimSpace(raw.Command) == "" {
		problems = append(problems, "command must not be empty")
	}

	sig := syscall.SIGTERM
	if raw.Signal != "" {
		if n, err := strconv.Atoi(raw.Signal); err == nil {
			sig = syscall.Signal(n)
		} else if resolved, ok := signalNames[strings.TrimPrefix(strings.ToUpper(raw.Signal), "SIG")]; ok {
			sig = resolved
		} else {
			problems = append(problems, fmt.Sprintf("unknown signal %q", raw.Signal))
		}
	}

	stdin, stdout, stderr := raw.Stdin, raw.Stdout, raw.Stderr
	if stdin == "" {
		stdin = os.DevNull
	}
	if stdout == "" {
		stdout = os.DevNull
	}
	if stderr == "" {
		stderr = os.DevNull
	}

	return JobConfig{
		Name:       name,
		Command:    raw.Command,
		Stdin:      stdin,
		Stdout:     stdout,
		Stderr:     stderr,
		Env:        raw.Env,
		Cwd:        raw.Cwd,
		StopSignal: sig,
		Autostart:  raw.Autostart,
		Restart:    raw.Restart,
	}, problems
}

func readRawFile(path string) (*rawFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var rf rawFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &rf, nil
}

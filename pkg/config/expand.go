package config

import "os"

// expand performs $NAME / ${NAME} substitution against the daemon's own
// environment, mirroring os.path.expandvars as used by the source
// project's ConfigHandler. Job env overlays are expanded too, but always
// against the daemon's environment, never against the overlay itself -
// overlays do not see each other.
func expand(s string) string {
	return os.Expand(s, os.Getenv)
}

func expandJob(j rawJob) rawJob {
	j.Command = expand(j.Command)
	j.Stdin = expand(j.Stdin)
	j.Stdout = expand(j.Stdout)
	j.Stderr = expand(j.Stderr)
	j.Cwd = expand(j.Cwd)

	if len(j.Env) > 0 {
		expanded := make(map[string]string, len(j.Env))
		for k, v := range j.Env {
			expanded[k] = expand(v)
		}
		j.Env = expanded
	}

	return j
}

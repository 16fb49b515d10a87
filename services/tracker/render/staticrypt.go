package render

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// EncryptSite password-protects the generated index.html in place
// using the staticrypt CLI. Returns exec.ErrNotFound (wrapped) when
// staticrypt is not installed so callers can degrade to a warning
// instead of failing the build.
func EncryptSite(dir string, password string) error {
	bin, err := exec.LookPath("staticrypt")
	if err != nil {
		return fmt.Errorf("staticrypt not found: %w", err)
	}

	cmd := exec.Command(
		bin, filepath.Join(dir, "index.html"),
		"-p", password,
		"--short",
		"--remember", "30",
		"--template-title", "Water Polo Tracker - Login",
		"--template-instructions", "Introdueix la contrasenya per accedir.",
		"--template-button", "Entrar",
		"--template-placeholder", "Contrasenya",
		"--template-remember", "Recorda'm 30 dies",
		"--template-error", "Contrasenya incorrecta!",
		"--template-color-primary", "#0077B6",
		"--template-color-secondary", "#023E8A",
		"-d", dir,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("staticrypt: %w: %s", err, out)
	}
	return nil
}

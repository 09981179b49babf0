package domain

const (
	// ConfigFileName is the name of the optional settings file.
	ConfigFileName = ".fake.yaml"

	// DefaultMakeBinary is the make invoked when no other is configured.
	DefaultMakeBinary = "make"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultMakefileNames lists the build files make looks for, in lookup order.
func DefaultMakefileNames() []string {
	return []string{"GNUmakefile", "makefile", "Makefile"}
}

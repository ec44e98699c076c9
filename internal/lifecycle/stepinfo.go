package lifecycle

import "runtime"

// StepInfo is the read-only metadata record handed to the external
// executor alongside each action: working directories and
// cross-compilation facts derived once from target_arch, never branched
// on by the sequencer itself.
type StepInfo struct {
	WorkDir  string
	PartsDir string
	StageDir string
	PrimeDir string

	ParallelBuildCount int
	LocalPluginsDir    string

	targetMachine  string
	platformArch   string
	archInfo       archInfo
	PlatformID     string
	PlatformVersionID string
}

type archInfo struct {
	Kernel               string
	Deb                  string
	UTSMachine           string
	CrossCompilerPrefix  string
	CrossBuildPackages   []string
	Triplet              string
	CoreDynamicLinker    string
}

// NewStepInfo builds a StepInfo for workDir, resolving targetArch (empty
// means "build natively for the running platform") against the
// architecture translation table.
func NewStepInfo(workDir, targetArch, platformID, platformVersionID string, parallelBuildCount int, localPluginsDir string) StepInfo {
	if workDir == "" {
		workDir = "."
	}

	platformArch := goArchToDebianArch(runtime.GOARCH)
	target := targetArch
	if target == "" {
		target = platformArch
	}

	info, ok := archTranslations[target]
	if !ok {
		info = archTranslations[platformArch]
	}

	return StepInfo{
		WorkDir:            workDir,
		PartsDir:           joinPath(workDir, "parts"),
		StageDir:           joinPath(workDir, "stage"),
		PrimeDir:           joinPath(workDir, "prime"),
		ParallelBuildCount: parallelBuildCount,
		LocalPluginsDir:    localPluginsDir,
		targetMachine:      target,
		platformArch:       platformArch,
		archInfo:           info,
		PlatformID:         platformID,
		PlatformVersionID:  platformVersionID,
	}
}

// ArchTriplet returns the GNU target triplet for the resolved target
// architecture (e.g. "x86_64-linux-gnu").
func (s StepInfo) ArchTriplet() string { return s.archInfo.Triplet }

// DebArch returns the Debian architecture name for the resolved target
// (e.g. "amd64", "arm64").
func (s StepInfo) DebArch() string { return s.archInfo.Deb }

// IsCrossCompiling reports whether the resolved target architecture
// differs from the architecture partbuilder itself is running on.
func (s StepInfo) IsCrossCompiling() bool { return s.targetMachine != s.platformArch }

// CrossBuildPackages lists the packages needed to cross-compile for the
// resolved target, or nil when building natively.
func (s StepInfo) CrossBuildPackages() []string {
	if !s.IsCrossCompiling() {
		return nil
	}
	return s.archInfo.CrossBuildPackages
}

func joinPath(base, leaf string) string {
	if base == "" {
		return leaf
	}
	return base + "/" + leaf
}

// goArchToDebianArch maps Go's GOARCH to the uts_machine keys used by the
// translation table below, which was built around uname(1)-style machine
// names rather than Go's own arch naming.
func goArchToDebianArch(goArch string) string {
	switch goArch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "arm":
		return "armv7l"
	case "386":
		return "i686"
	case "ppc64":
		return "ppc"
	case "ppc64le":
		return "ppc64le"
	case "riscv64":
		return "riscv64"
	case "s390x":
		return "s390x"
	default:
		return goArch
	}
}

// archTranslations mirrors original_source/partbuilder/_stepinfo.py's
// _ARCH_TRANSLATIONS table.
var archTranslations = map[string]archInfo{
	"aarch64": {
		Kernel:              "arm64",
		Deb:                 "arm64",
		UTSMachine:          "aarch64",
		CrossCompilerPrefix: "aarch64-linux-gnu-",
		CrossBuildPackages:  []string{"gcc-aarch64-linux-gnu", "libc6-dev-arm64-cross"},
		Triplet:             "aarch64-linux-gnu",
		CoreDynamicLinker:   "lib/ld-linux-aarch64.so.1",
	},
	"armv7l": {
		Kernel:              "arm",
		Deb:                 "armhf",
		UTSMachine:          "arm",
		CrossCompilerPrefix: "arm-linux-gnueabihf-",
		CrossBuildPackages:  []string{"gcc-arm-linux-gnueabihf", "libc6-dev-armhf-cross"},
		Triplet:             "arm-linux-gnueabihf",
		CoreDynamicLinker:   "lib/ld-linux-armhf.so.3",
	},
	"i686": {
		Kernel:     "x86",
		Deb:        "i386",
		UTSMachine: "i686",
		Triplet:    "i386-linux-gnu",
	},
	"ppc": {
		Kernel:              "powerpc",
		Deb:                 "powerpc",
		UTSMachine:          "powerpc",
		CrossCompilerPrefix: "powerpc-linux-gnu-",
		CrossBuildPackages:  []string{"gcc-powerpc-linux-gnu", "libc6-dev-powerpc-cross"},
		Triplet:             "powerpc-linux-gnu",
	},
	"ppc64le": {
		Kernel:              "powerpc",
		Deb:                 "ppc64el",
		UTSMachine:          "ppc64el",
		CrossCompilerPrefix: "powerpc64le-linux-gnu-",
		CrossBuildPackages:  []string{"gcc-powerpc64le-linux-gnu", "libc6-dev-ppc64el-cross"},
		Triplet:             "powerpc64le-linux-gnu",
		CoreDynamicLinker:   "lib64/ld64.so.2",
	},
	"riscv64": {
		Kernel:              "riscv64",
		Deb:                 "riscv64",
		UTSMachine:          "riscv64",
		CrossCompilerPrefix: "riscv64-linux-gnu-",
		CrossBuildPackages:  []string{"gcc-riscv64-linux-gnu", "libc6-dev-riscv64-cross"},
		Triplet:             "riscv64-linux-gnu",
		CoreDynamicLinker:   "lib/ld-linux-riscv64-lp64d.so.1",
	},
	"s390x": {
		Kernel:              "s390",
		Deb:                 "s390x",
		UTSMachine:          "s390x",
		CrossCompilerPrefix: "s390x-linux-gnu-",
		CrossBuildPackages:  []string{"gcc-s390x-linux-gnu", "libc6-dev-s390x-cross"},
		Triplet:             "s390x-linux-gnu",
		CoreDynamicLinker:   "lib/ld64.so.1",
	},
	"x86_64": {
		Kernel:            "x86",
		Deb:               "amd64",
		UTSMachine:        "x86_64",
		Triplet:           "x86_64-linux-gnu",
		CoreDynamicLinker: "lib64/ld-linux-x86-64.so.2",
	},
}

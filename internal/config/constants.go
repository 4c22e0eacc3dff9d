package config

// ModuleFileExt is the extension of typed module files.
const ModuleFileExt = ".vc.yaml"

// ModuleFileExtensions are all recognized typed module file extensions
var ModuleFileExtensions = []string{".vc.yaml", ".vc.yml"}

// Config file names searched by FindConfig, in order.
var ConfigFileNames = []string{"vcgen.yaml", "vcgen.yml"}

// Location detail messages attached to synthesized expressions.
const (
	DetailWhileBaseCase      = "Base Case of the Invariant of While Statement"
	DetailWhileInvariant     = "Invariant of While Statement"
	DetailWhileDecreasing    = "Decreasing Expression of While Statement"
	DetailWhileTermination   = "Termination of While Statement"
	DetailWhileInductiveCase = "Inductive Case of Invariant of While Statement"
	DetailIfCondition        = "If Statement Condition"
	DetailIfNegatedCondition = "Negation of If Statement Condition"
	DetailRequiresOf         = "Requires Clause of "
	DetailEnsuresOf          = "Ensures Clause of "
	DetailProcedureRequires  = "Requires Clause of Procedure "
	DetailProcedureEnsures   = "Ensures Clause of Procedure "
	DetailInitialization     = "Initialization of Variable "
)

// Proof rule descriptions.
const (
	RuleAssume     = "Assume Rule"
	RuleConfirm    = "Confirm Rule"
	RuleChange     = "Change Rule"
	RuleRemember   = "Remember Rule"
	RuleForget     = "Forget Rule"
	RuleAssignment = "Function Assignment Rule"
	RuleSwap       = "Swap Rule"
	RuleCall       = "Call Rule"
	RuleIf         = "If-Else Rule"
	RuleWhile      = "While Rule"
	RuleVCConfirm  = "VC Confirm Rule"
)

// Built-in math symbol names.
const (
	AndName     = "and"
	OrName      = "or"
	NotName     = "not"
	ImpliesName = "implies"
	EqualsName  = "="
	NotEqName   = "/="
	PlusName    = "+"
	LessEqName  = "<="
	TrueName    = "true"
	FalseName   = "false"
	OldPrefix   = "#"
	NQVSuffix   = "'"
	PValName    = "P_Val"
)

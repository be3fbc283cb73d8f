package resolver

import (
	"javaindex/internal/core/errors"
)

// ImplicitPackage is the namespace every compilation unit sees without an
// import.
const ImplicitPackage = "java.lang"

// ClassLookup answers whether a short name denotes a class of the implicit
// namespace. Absent names are reported with an error coded NOT_FOUND; any
// other error aborts the resolution of the current file.
type ClassLookup interface {
	Lookup(short string) (string, error)
}

// LookupFunc adapts a function to ClassLookup.
type LookupFunc func(short string) (string, error)

func (f LookupFunc) Lookup(short string) (string, error) { return f(short) }

// JavaLangLookup resolves against the public top-level types of java.lang.
type JavaLangLookup struct {
	classes map[string]bool
}

// NewJavaLangLookup returns a lookup over the JDK's java.lang types plus any
// extra short names supplied.
func NewJavaLangLookup(extra ...string) *JavaLangLookup {
	classes := make(map[string]bool, len(javaLangClasses)+len(extra))
	for _, name := range javaLangClasses {
		classes[name] = true
	}
	for _, name := range extra {
		if name != "" {
			classes[name] = true
		}
	}
	return &JavaLangLookup{classes: classes}
}

func (l *JavaLangLookup) Lookup(short string) (string, error) {
	if !l.classes[short] {
		return "", errors.New(errors.CodeNotFound, "not a java.lang class: "+short)
	}
	return ImplicitPackage + "." + short, nil
}

var javaLangClasses = []string{
	"AbstractMethodError",
	"Appendable",
	"ArithmeticException",
	"ArrayIndexOutOfBoundsException",
	"ArrayStoreException",
	"AssertionError",
	"AutoCloseable",
	"Boolean",
	"BootstrapMethodError",
	"Byte",
	"CharSequence",
	"Character",
	"Class",
	"ClassCastException",
	"ClassCircularityError",
	"ClassFormatError",
	"ClassLoader",
	"ClassNotFoundException",
	"ClassValue",
	"CloneNotSupportedException",
	"Cloneable",
	"Comparable",
	"Deprecated",
	"Double",
	"Enum",
	"EnumConstantNotPresentException",
	"Error",
	"Exception",
	"ExceptionInInitializerError",
	"Float",
	"FunctionalInterface",
	"IllegalAccessError",
	"IllegalAccessException",
	"IllegalArgumentException",
	"IllegalCallerException",
	"IllegalMonitorStateException",
	"IllegalStateException",
	"IllegalThreadStateException",
	"IncompatibleClassChangeError",
	"IndexOutOfBoundsException",
	"InheritableThreadLocal",
	"InstantiationError",
	"InstantiationException",
	"Integer",
	"InternalError",
	"InterruptedException",
	"Iterable",
	"LayerInstantiationException",
	"LinkageError",
	"Long",
	"Math",
	"Module",
	"ModuleLayer",
	"NegativeArraySizeException",
	"NoClassDefFoundError",
	"NoSuchFieldError",
	"NoSuchFieldException",
	"NoSuchMethodError",
	"NoSuchMethodException",
	"NullPointerException",
	"Number",
	"NumberFormatException",
	"Object",
	"OutOfMemoryError",
	"Override",
	"Package",
	"Process",
	"ProcessBuilder",
	"ProcessHandle",
	"Readable",
	"Record",
	"ReflectiveOperationException",
	"Runnable",
	"Runtime",
	"RuntimeException",
	"RuntimePermission",
	"SafeVarargs",
	"SecurityException",
	"SecurityManager",
	"Short",
	"StackOverflowError",
	"StackTraceElement",
	"StackWalker",
	"StrictMath",
	"String",
	"StringBuffer",
	"StringBuilder",
	"StringIndexOutOfBoundsException",
	"SuppressWarnings",
	"System",
	"Thread",
	"ThreadDeath",
	"ThreadGroup",
	"ThreadLocal",
	"Throwable",
	"TypeNotPresentException",
	"UnknownError",
	"UnsatisfiedLinkError",
	"UnsupportedClassVersionError",
	"UnsupportedOperationException",
	"VerifyError",
	"VirtualMachineError",
	"Void",
}

package demangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmangle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"not mangled", "global", "global"},
		{"no parameters", "_Z6myfuncv", "myfunc()"},
		{"two parameters", "_Z3foodf", "foo(double,float)"},
		{"variadic", "_Z1fiz", "f(int,...)"},
		{"nested data", "_ZN1S1xE", "S::x"},
		{"nested function", "_ZN3foo3barEv", "foo::bar()"},
		{"deep nesting", "_ZN5outer5inner4leafEi", "outer::inner::leaf(int)"},
		{"template function", "_Z5firstI3DuoEvS0_", "void first<Duo>(Duo)"},
		{"template returning pointer", "_Z1fIiEPiv", "int* f<int>()"},
		{"template parameter", "_Z1fIiEvT_", "void f<int>(int)"},
		{"nested template argument", "_Z1fI1AIiEEvv", "void f<A<int> >()"},
		{"argument pack", "_Z1fIJicEEvv", "void f<int,char>()"},
		{"const member", "_ZNK1A1fEv", "A::f() const"},
		{"rvalue member", "_ZNO1A1fEv", "A::f() &&"},
		{"pointer to const char", "_Z1fPKc", "f(char const*)"},
		{"const pointer to char", "_Z1fKPc", "f(char* const)"},
		{"const reference", "_Z1fRKi", "f(int const&)"},
		{"rvalue reference", "_Z1fOi", "f(int&&)"},
		{"function pointer", "_Z1fPFviE", "f(void (*)(int))"},
		{"function pointer returning function pointer", "_Z1fPFPFivEvE", "f(int (*(*)())())"},
		{"template returning function pointer", "_Z1fIiEPFvvEv", "void (*f<int>())()"},
		{"member function pointer", "_Z1fM1AKFvvE", "f(void (A::*)() const)"},
		{"data member pointer", "_Z1fM1Ai", "f(int A::*)"},
		{"reference to array", "_Z1fRA4_Kx", "f(long long const(&)[4])"},
		{"pointer to array", "_Z1fPA4_i", "f(int(*)[4])"},
		{"multidimensional array", "_Z1fA2_A3_i", "f(int[2][3])"},
		{"vendor type", "_Z1fu6__bf16", "f(__bf16)"},
		{"internal linkage", "_ZL3barv", "bar()"},
		{"internal linkage data", "_ZL3foo", "foo"},
		{"anonymous namespace", "_ZN12_GLOBAL__N_11fEv", "(anonymous namespace)::f()"},
		{"abi tag", "_Z3fooB5cxx11v", "foo[abi:cxx11]()"},
		{"unnamed type", "_ZN1AUt_E", "A::<unnamed #1>"},
		{"second unnamed type", "_ZN1AUt1_E", "A::<unnamed #2>"},
		{"unnamed number past symbol length", "_ZN1AUt99_E", "A::<unnamed #100>"},
		{"local static", "_ZZ4mainE5local", "main::local"},
		{"local in function", "_ZZ1fvE1x", "f()::x"},
		{"local with discriminator", "_ZZ4mainE5local_0", "main::local#1"},
		{"local with long discriminator", "_ZZ4mainE5local__42_", "main::local#43"},
		{"string literal", "_ZZ1fvEs", "f()::string literal"},
		{"clone", "_Z3foov.cold", "foo() [clone .cold]"},
		{"numbered clone", "_Z3foov.constprop.0", "foo() [clone .constprop.0]"},
		{"chained clones", "_Z3foov.part.0.cold", "foo() [clone .part.0] [clone .cold]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmangle(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnmangleStd(t *testing.T) {
	const str = "::std::basic_string<char,::std::char_traits<char>,::std::allocator<char> >"

	tests := []struct {
		input    string
		expected string
	}{
		{"_Z1fSs", "f(" + str + ")"},
		{"_Z1fSa", "f(::std::allocator)"},
		{"_Z1fSb", "f(::std::basic_string)"},
		{"_Z1fRSo", "f(::std::basic_ostream<char,::std::char_traits<char> >&)"},
		{"_Z1fRSi", "f(::std::basic_istream<char,::std::char_traits<char> >&)"},
		{"_Z1fRSd", "f(::std::basic_iostream<char,::std::char_traits<char> >&)"},
		{"_ZNSs4sizeEv", str + "::size()"},
		{"_ZSt4movev", "::std::move()"},
		{
			"_ZNSt6vectorIiSaIiEE9push_backERKi",
			"::std::vector<int,::std::allocator<int> >::push_back(int const&)",
		},
		{
			"_ZNSt6vectorIiSaIiEE9push_backERKiRKS1_",
			"::std::vector<int,::std::allocator<int> >::push_back(int const&,::std::vector<int,::std::allocator<int> > const&)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Unmangle(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnmangleBackReferences(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"_Z1fN1A1BE", "f(A::B)"},
		{"_Z1fN1A1BES_", "f(A::B,A)"},
		{"_Z1fN1A1BES0_", "f(A::B,A::B)"},
		{"_Z1fN1A1BES_S0_", "f(A::B,A,A::B)"},
		{"_Z1fP1XS_S0_", "f(X*,X,X*)"},
		{"_Z1fRK1XS0_", "f(X const&,X const)"},
		{"_Z1fPKcS_", "f(char const*,char const)"},
		{"_Z1fPKcS0_", "f(char const*,char const*)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Unmangle(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnmangleOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"_ZdaPv", "operator delete[](void*)"},
		{"_ZdlPv", "operator delete(void*)"},
		{"_Znwm", "operator new(unsigned long)"},
		{"_Znam", "operator new[](unsigned long)"},
		{"_ZN1AplERKS_", "A::operator +(A const&)"},
		{"_ZN1AaSEOS_", "A::operator =(A&&)"},
		{"_ZNK1AclEv", "A::operator ()() const"},
		{"_ZNK1AixEi", "A::operator [](int) const"},
		{"_ZN1AssERKS_", "A::operator <=>(A const&)"},
		{"_ZlsRSoi", "operator <<(::std::basic_ostream<char,::std::char_traits<char> >&,int)"},
		{"_Zli2_xy", `operator"" _x(unsigned long long)`},
		{"_ZNK1AcviEv", "A::operator int() const()"},
		{"_ZN1AcvPKcEv", "A::operator char const*()()"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Unmangle(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnmangleCtorDtor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"_ZN1AC1Ev", "A::A()"},
		{"_ZN1AC2ERKS_", "A::A(A const&)"},
		{"_ZN1AD0Ev", "A::~A()"},
		{"_ZN1AD2Ev", "A::~A()"},
		{"_ZN1AIiEC1Ev", "A<int>::A()"},
		{"_ZN1AIiED1Ev", "A<int>::~A()"},
		{"_ZNSsC1Ev", "::std::basic_string<char,::std::char_traits<char>,::std::allocator<char> >::basic_string()"},
		{"_ZN1AC1IiEET_", "A::A<int>(int)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Unmangle(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnmangleLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"_Z1fILi3EEvv", "void f<3>()"},
		{"_Z1fILin5EEvv", "void f<-5>()"},
		{"_Z1fILj7EEvv", "void f<7U>()"},
		{"_Z1fILl7EEvv", "void f<7L>()"},
		{"_Z1fILm7EEvv", "void f<7UL>()"},
		{"_Z1fILx7EEvv", "void f<7LL>()"},
		{"_Z1fILy7EEvv", "void f<7ULL>()"},
		{"_Z1fILb1EEvv", "void f<true>()"},
		{"_Z1fILb0EEvv", "void f<false>()"},
		{"_Z1fILc65EEvv", "void f<(char)65>()"},
		{"_Z1fILDnEEvv", "void f<nullptr>()"},
		{"_Z1fILf3f800000EEvv", "void f<(float)[3f800000]>()"},
		{"_Z1fIL_Z1gvEEvv", "void f<g()>()"},
		{"_Z1fI1XLi2EEvv", "void f<X,2>()"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Unmangle(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnmangleSpecialForms(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"_ZTV1A", "<virtual table for A>"},
		{"_ZTT1A", "<VTT structure for A>"},
		{"_ZTI1A", "<typeinfo structure for A>"},
		{"_ZTS5Derv1", "<typeinfo name for Derv1>"},
		{"_ZTIN3foo3BarE", "<typeinfo structure for foo::Bar>"},
		{"_ZGVZ1fvE1x", "<one-time-init guard for f()::x>"},
		{"_ZThn8_N1B1fEv", "<non-virtual base override at offset -0x8 for B::f()>"},
		{"_ZThn16_N1B1fEv", "<non-virtual base override at offset -0x10 for B::f()>"},
		{"_ZTv0_n24_N1B1fEv", "<virtual base override at offset +0x0, vcall offset -0x18 for B::f()>"},
		{"_ZThn64_N1B1fEv", "<non-virtual base override at offset -0x40 for B::f()>"},
		{"_ZTv0_n1024_N1B1fEv", "<virtual base override at offset +0x0, vcall offset -0x400 for B::f()>"},
		{"_ZTh4096_N1B1fEv", "<non-virtual base override at offset +0x1000 for B::f()>"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Unmangle(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnmangleType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"int", "int"},
		{"_ZSt6string", "::std::string"},
		{"_ZPKc", "char const*"},
		{"_Zi", "int"},
		{"_ZN3foo3BarE", "foo::Bar"},
		{"_ZFviE", "void (int)"},
		{"_ZA10_c", "char[10]"},
		{"_ZSs", "::std::basic_string<char,::std::char_traits<char>,::std::allocator<char> >"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := UnmangleType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnmangleErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason error
	}{
		{"marker only", "_Z", ErrTruncated},
		{"length past end", "_Z16myfuncv", ErrTruncated},
		{"unterminated nested name", "_ZN1A1f", ErrTruncated},
		{"missing parameters", "_ZN1AC1E", ErrTruncated},
		{"void among parameters", "_Z3fooiv", ErrMalformed},
		{"zero length", "_Z0v", ErrMalformed},
		{"length short of name", "_Z2myfuncv", ErrMalformed},
		{"length one short of name", "_Z5myfuncv", ErrMalformed},
		{"short length read as vendor type", "_Z3myffuncv", ErrMalformed},
		{"empty template arguments", "_Z1fIEvv", ErrMalformed},
		{"nothing recorded", "_Z1fS_", ErrInvalidSubstitution},
		{"past last entry", "_Z1fN1A1BES1_", ErrInvalidSubstitution},
		{"builtin not recorded", "_Z1fiS_", ErrInvalidSubstitution},
		{"std abbreviation not recorded", "_Z1fSsS_", ErrInvalidSubstitution},
		{"template parameter out of range", "_Z1fIiEvT0_", ErrInvalidSubstitution},
		{"conversion to later template parameter", "_ZN1AcvT_IiEEv", ErrInvalidSubstitution},
		{"unknown operator", "_Zqq1fv", ErrUnknownCode},
		{"unknown special name", "_ZTX1A", ErrUnknownCode},
		{"unknown std abbreviation", "_Z1fSz", ErrUnknownCode},
		{"unknown guard", "_ZGR1x", ErrUnknownCode},
		{"unsupported type", "_Z1fDt", ErrUnknownCode},
		{"closure", "_ZZ1fvENUlvE_clEv", ErrUnknownCode},
		{"bad type character", "_Z3foo?", ErrUnexpectedCharacter},
		{"trailing garbage", "_Z1fv!", ErrUnexpectedCharacter},
		{"bad name character", "_Z$", ErrUnexpectedCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmangle(tt.input)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, tt.reason)
			assert.Equal(t, tt.reason, Reason(err))

			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.input, de.Input)
			assert.GreaterOrEqual(t, de.Offset, 0)
			assert.LessOrEqual(t, de.Offset, len(tt.input))
		})
	}
}

func TestUnmangleTypeErrors(t *testing.T) {
	_, err := UnmangleType("_ZPKcx")
	assert.ErrorIs(t, err, ErrUnexpectedCharacter)

	_, err = UnmangleType("_ZP")
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestNotMangledPassThrough(t *testing.T) {
	inputs := []string{"", "main", "_start", "_z3foov", "Z3foov", "?foo@@YAXXZ", "_ZN", "__Z3foov", "printf@@GLIBC_2.2.5"}
	for _, in := range inputs {
		if IsMangled(in) {
			continue
		}
		got, err := Unmangle(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, got)

		got, err = UnmangleType(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, got)
	}
}

func TestUndecorate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"_ZdaPv@@GLIBCXX_3.4", "_ZdaPv"},
		{"printf@@GLIBC_2.2.5", "printf"},
		{"a@@b@@c", "a"},
		{"memcpy@GLIBC_2.2.5", "memcpy@GLIBC_2.2.5"},
		{"plain", "plain"},
		{"@@", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Undecorate(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.NotContains(t, got, "@@")
		})
	}
}

func TestUnmangleSimple(t *testing.T) {
	assert.Equal(t, "operator delete[](void*)", UnmangleSimple("_ZdaPv@@GLIBCXX_3.4"))
	assert.Equal(t, "_Z16myfuncv", UnmangleSimple("_Z16myfuncv"))
	assert.Equal(t, "global", UnmangleSimple("global"))
	assert.Equal(t, "memcpy@@GLIBC_2.14", UnmangleSimple("memcpy@@GLIBC_2.14"))
	assert.Equal(t, "_Z16myfuncv@@V1", UnmangleSimple("_Z16myfuncv@@V1"))
}

func TestIsMangled(t *testing.T) {
	assert.True(t, IsMangled("_Z3foov"))
	assert.True(t, IsMangled("_Z"))
	assert.False(t, IsMangled("foo"))
	assert.False(t, IsMangled("?foo@@YAXXZ"))
	assert.False(t, IsMangled(""))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no symbols", "nothing to see", "nothing to see"},
		{"single", "at _Z6myfuncv+0x10", "at myfunc()+0x10"},
		{"several", "_Z3foodf calls _ZN1S1xE", "foo(double,float) calls S::x"},
		{"version kept", "_ZdaPv@@GLIBCXX_3.4", "operator delete[](void*)@@GLIBCXX_3.4"},
		{"trailing period", "crashed in _Z6myfuncv.", "crashed in myfunc()."},
		{"periods before version", "_Z6myfuncv.@@V1 and _Z3foov..@V2", "myfunc().@@V1 and foo()..@V2"},
		{"clone", "#3 _Z3foov.cold ()", "#3 foo() [clone .cold] ()"},
		{"invalid left alone", "see _Z16myfuncv here", "see _Z16myfuncv here"},
		{"inside identifier", "my_Z3foov", "my_Z3foov"},
		{"nm line", "0000000000001139 T _ZN3foo3barEv", "0000000000001139 T foo::bar()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Filter(tt.input))
		})
	}
}

// Package testing provides a shared conformance test and benchmark suite for
// register.IRegister implementations.
//
// Every implementation (local or remote) should run the same suite, so that
// behavior stays consistent across backends:
//
//	func Test(t *testing.T) {
//		regtesting.RunRegisterTests(t, "LocalRegister", func() register.IRegister {
//			return lregister.NewLocalRegister(nil)
//		})
//	}
package testing

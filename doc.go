// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package eff provides effect programs over side-effecting capabilities
// via algebraic effects on [code.hybscloud.com/kont].
//
// Programs are pure descriptions: they perform typed effects and say
// nothing about how an effect is served. Interpreters give effects
// meaning at run time, so one program body runs against in-memory
// doubles in a test and real backends in production.
//
// # Architecture
//
//   - Effects: Immutable values grouped into storage, cache, messaging,
//     socket and auth categories. Constructors validate shape and never
//     touch I/O.
//   - Programs: [Program] is [code.hybscloud.com/kont.Eff]; sequencing is
//     [code.hybscloud.com/kont.Bind], [code.hybscloud.com/kont.Map] and
//     [code.hybscloud.com/kont.Then]. [Done] lifts a plain value.
//   - Interpretation: [Interpreter] returns [Result] of [EffectReturn]
//     or [InterpreterError]. [NewComposite] routes by category and
//     reports gaps as [UnhandledEffectError].
//   - Execution: [Run] steps one effect at a time on the calling
//     goroutine and fails fast on the first Err.
//   - Error Handling: [InterpreterError] is a closed union carrying the
//     failed effect and a retryability flag; expected misses and
//     rejections are ordinary outcomes, not errors.
//
// # API Topologies
//
//   - Effects: [Lookup], [Persist], [CacheGet], [CachePut], [Publish],
//     [Consume], [Ack], [Nack], [SocketProbe], [SocketSend],
//     [SocketReceive], [SocketClose], [VerifyToken], [CheckAccess].
//   - Programs: [LookupRecord], [PersistRecord], [GetCached],
//     [PutCached], [PublishMessage], [ConsumeMessage], [AckMessage],
//     [NackMessage], [ProbeSocket], [SendText], [ReceiveText],
//     [CloseSocket], [Verify], [Access].
//   - Fused: [LookupBind], [PersistThen], [GetBind], [PutThen],
//     [PublishBind], [ConsumeBind], [SendThenReceive], [VerifyBind].
//   - Recursive: [Loop] for trampoline-based iterative programs.
//
// # Example
//
//	program := eff.LookupBind("users", "u-1", func(out eff.LookupOutcome) eff.Program[string] {
//		if rec, ok := out.Found(); ok {
//			return eff.Done(string(rec.Data))
//		}
//		return eff.Done("")
//	})
//	res := eff.Run(ctx, program, interpreter)
package eff

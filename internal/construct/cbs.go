package construct

// cbsKey flattens the 6-tuple (e, t, r, e', t', r') the reference
// implementation describes as "I placed e at (t,r) and thereby displaced e'
// from (t',r')" — used to steer value selection away from recurring
// unsuccessful choices (§4.3, §9: "sparse; prefer a hash map").
type cbsKey struct {
	E, T, R    int
	E2, T2, R2 int
}

// cbs is the Conflict-Based Statistics table. It persists across
// Constructor invocations within one Constructor instance's lifetime,
// matching §4.3: "CBS persists across construction invocations within one
// run".
type cbs struct {
	counts map[cbsKey]int
}

func newCBS() *cbs {
	return &cbs{counts: make(map[cbsKey]int)}
}

func (c *cbs) get(e, t, r, e2, t2, r2 int) int {
	return c.counts[cbsKey{e, t, r, e2, t2, r2}]
}

func (c *cbs) increment(e, t, r, e2, t2, r2 int) {
	c.counts[cbsKey{e, t, r, e2, t2, r2}]++
}

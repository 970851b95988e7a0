// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jit

import "fmt"

// Translate walks root's jittable sub-plan and, if it clears the
// minimum-complexity bar, emits a Chain. A nil Chain with an
// ErrPlanRejected-wrapped error means the caller should fall back to
// stock operators; that is not a failure.
func Translate(root *LQPNode, cfg EngineConfig) (*Chain, error) {
	chain, err := translateWithConfig(root, cfg)
	if err == nil {
		return chain, nil
	}
	if cfg.ValueIDAccelerationEnabled {
		// Retry once with value-id acceleration disabled before giving
		// up entirely.
		relaxed := cfg
		relaxed.ValueIDAccelerationEnabled = false
		if chain2, err2 := translateWithConfig(root, relaxed); err2 == nil {
			return chain2, nil
		}
	}
	return nil, rejectf("%v", err)
}

func translateWithConfig(root *LQPNode, cfg EngineConfig) (*Chain, error) {
	nodes, err := collectJittableRun(root)
	if err != nil {
		return nil, err
	}
	if err := checkMinimumComplexity(nodes); err != nil {
		return nil, err
	}

	tr := newTranslator(cfg)

	var validateNode *LQPNode
	var predicateExprs []*LQPExpr
	var projectionNode *LQPNode
	var limitNode *LQPNode
	var aggregateNode *LQPNode
	var leaf *LQPNode

	for _, n := range nodes {
		switch n.Kind {
		case LQPScan, LQPUnion:
			leaf = n
		case LQPValidate:
			if validateNode != nil {
				return nil, rejectf("more than one Validate node in jittable run")
			}
			validateNode = n
		case LQPPredicate:
			predicateExprs = append(predicateExprs, simplifyRedundantNotEqualZero(n.Predicate))
		case LQPProjection:
			if projectionNode != nil {
				return nil, rejectf("more than one Projection node in jittable run")
			}
			projectionNode = n
		case LQPLimit:
			if limitNode != nil {
				return nil, rejectf("more than one Limit node in jittable run")
			}
			limitNode = n
		case LQPAggregate:
			if aggregateNode != nil {
				return nil, rejectf("more than one Aggregate node in jittable run")
			}
			aggregateNode = n
		default:
			return nil, rejectf("node kind %s is not jittable", n.Kind)
		}
	}
	if leaf == nil {
		return nil, rejectf("jittable run has no Scan/Union leaf")
	}
	if aggregateNode != nil && limitNode != nil {
		return nil, rejectf("Aggregate and Limit cannot both appear in one jittable run")
	}

	table, err := tr.resolveLeaf(leaf)
	if err != nil {
		return nil, err
	}

	// Read-Tuples, optional Validate.
	var first Operator
	var tail *Operator // pointer to the "next successor to set" slot
	appendOp := func(op Operator) {
		if first == nil {
			first = op
		} else {
			(*tail).SetSuccessor(op)
		}
		tail = &op
	}
	needsMVCC := cfg.JitValidateEnabled && validateNode != nil
	if needsMVCC {
		appendOp(NewValidateOp())
	}

	// Optional Filter subtree: AND every predicate expression together.
	if len(predicateExprs) > 0 {
		combined := predicateExprs[0]
		for _, e := range predicateExprs[1:] {
			combined = &LQPExpr{Kind: LQPExprAnd, Left: combined, Right: e, Typ: Bool}
		}
		node, err := tr.lowerExpr(combined, table)
		if err != nil {
			return nil, err
		}
		tr.emitPendingReaders(appendOp)
		appendOp(NewComputeOp(node))
		appendOp(NewFilterOp(node.Result.Index))
	}

	c := &Chain{Config: cfg}

	if aggregateNode != nil {
		groupBy := make([]TupleSlot, len(aggregateNode.GroupBys))
		for i, e := range aggregateNode.GroupBys {
			n, err := tr.lowerExpr(e, table)
			if err != nil {
				return nil, err
			}
			tr.emitPendingReaders(appendOp)
			appendOp(NewComputeOp(n))
			groupBy[i] = n.Result
		}
		aggSpecs := make([]AggSpec, len(aggregateNode.Aggs))
		for i, a := range aggregateNode.Aggs {
			spec := AggSpec{Func: a.Func}
			if a.Arg != nil {
				n, err := tr.lowerExpr(a.Arg, table)
				if err != nil {
					return nil, err
				}
				tr.emitPendingReaders(appendOp)
				appendOp(NewComputeOp(n))
				spec.Input = n.Result
			}
			spec.Result = TupleSlot{Typ: a.Result, Nullable: true, Index: tr.allocSlot(a.Result, true)}
			aggSpecs[i] = spec
		}
		agg := NewAggregateOp(groupBy, aggSpecs)
		appendOp(agg)
		c.Aggregate = agg

		outSlots := append(append([]TupleSlot(nil), groupBy...), func() []TupleSlot {
			s := make([]TupleSlot, len(aggSpecs))
			for i, a := range aggSpecs {
				s[i] = a.Result
			}
			return s
		}()...)
		c.OutputSlots = outSlots
		c.OutputColTypes, c.OutputColNullable = slotTypes(outSlots)
	} else {
		if limitNode != nil {
			limitExprNode, err := tr.lowerExpr(limitNode.LimitExpr, table)
			if err != nil {
				return nil, err
			}
			tr.read.LimitExpr = limitExprNode
			appendOp(NewLimitOp())
		}

		var outSlots []TupleSlot
		directRefs := true
		if projectionNode != nil {
			outSlots = make([]TupleSlot, len(projectionNode.Projections))
			for i, e := range projectionNode.Projections {
				if e.Kind != LQPExprColumn {
					directRefs = false
				}
				n, err := tr.lowerExpr(e, table)
				if err != nil {
					return nil, err
				}
				if e.Kind != LQPExprColumn {
					tr.emitPendingReaders(appendOp)
					appendOp(NewComputeOp(n))
				}
				outSlots[i] = n.Result
			}
		} else {
			directRefs = false
		}

		c.OutputSlots = outSlots
		c.OutputColTypes, c.OutputColNullable = slotTypes(outSlots)

		if directRefs && len(outSlots) > 0 {
			appendOp(NewWriteOffsetsOp())
			c.UsingOffsets = true
		} else {
			tr.emitPendingReaders(appendOp)
			appendOp(NewWriteTuplesOp(outSlots))
		}
	}

	tr.read.First = first
	tr.read.NeedsMVCC = needsMVCC
	c.Read = tr.read
	c.TupleTypes = tr.typs
	c.TupleNullable = tr.nullable
	return c, nil
}

// checkMinimumComplexity rejects sub-plans too small to be worth
// JIT-compiling.
func checkMinimumComplexity(nodes []*LQPNode) error {
	if len(nodes) == 0 {
		return rejectf("empty jittable run")
	}
	nonLeaf := 0
	for _, n := range nodes {
		if n.Kind != LQPScan && n.Kind != LQPUnion {
			nonLeaf++
		}
	}
	root := nodes[0]
	switch {
	case nonLeaf == 1:
		switch root.Kind {
		case LQPProjection, LQPValidate, LQPLimit, LQPPredicate:
			return rejectf("single %s node over a scan has no benefit over stock operators", root.Kind)
		}
	case nonLeaf == 2:
		if root.Kind == LQPValidate {
			return rejectf("two-node run rooted at Validate has no benefit over stock operators")
		}
	}
	return nil
}

// collectJittableRun walks down from root while every node is jittable
// and has exactly one child, stopping at the first non-jittable node.
// Union is the one node allowed more than one child: a Union whose
// children are every one a bare Scan is a table-concatenation leaf
// (kept as a single LQPUnion node, resolved later by resolveLeaf); a
// Union whose children are every one a Predicate chain over the
// identical underlying Scan is folded into a single OR'd boolean
// expression on that Scan.
func collectJittableRun(root *LQPNode) ([]*LQPNode, error) {
	var nodes []*LQPNode
	n := root
	for n != nil {
		if !isJittableKind(n.Kind) {
			return nil, rejectf("node kind %s is not jittable", n.Kind)
		}
		if len(nodes) > 0 && (n.Kind == LQPLimit || n.Kind == LQPAggregate) {
			return nil, rejectf("%s is only jittable at the root of a sub-plan", n.Kind)
		}
		if n.Kind == LQPUnion {
			allBareScans := true
			for _, ch := range n.Children {
				if ch.Kind != LQPScan {
					allBareScans = false
					break
				}
			}
			if allBareScans {
				nodes = append(nodes, n)
				break
			}
			leaf, orExpr, ok := unionAsDisjunction(n)
			if !ok {
				return nil, rejectf("Union children must either all be bare Scans, or all be Predicate chains over the same Scan")
			}
			// Keep the Union node itself in the run (translateWithConfig's
			// dispatch harmlessly overwrites the "leaf" it assigns with
			// the real Scan appended right after) so checkMinimumComplexity
			// sees the run's true shape: a Union root is never subject to
			// the single-trivial-node rejection.
			nodes = append(nodes, n)
			nodes = append(nodes, &LQPNode{Kind: LQPPredicate, Predicate: orExpr})
			nodes = append(nodes, leaf)
			break
		}
		nodes = append(nodes, n)
		if n.Kind == LQPScan {
			break
		}
		if len(n.Children) != 1 {
			return nil, rejectf("node kind %s must have exactly one child", n.Kind)
		}
		n = n.Children[0]
	}
	return nodes, nil
}

// unionAsDisjunction recognises Union(Predicate-chain, Predicate-chain,
// ...) where every branch's Predicate chain bottoms out at the same
// Scan node, compiling it into a single boolean expression feeding one
// Filter. It returns the shared Scan leaf and the OR of each branch's
// (possibly multi-Predicate, ANDed) conjunction.
func unionAsDisjunction(union *LQPNode) (leaf *LQPNode, expr *LQPExpr, ok bool) {
	if len(union.Children) < 2 {
		return nil, nil, false
	}
	var branches []*LQPExpr
	for _, ch := range union.Children {
		branchLeaf, conj, branchOK := collectPredicateChain(ch)
		if !branchOK || conj == nil {
			return nil, nil, false
		}
		if leaf == nil {
			leaf = branchLeaf
		} else if leaf.Table != branchLeaf.Table {
			return nil, nil, false
		}
		branches = append(branches, conj)
	}
	combined := branches[0]
	for _, b := range branches[1:] {
		combined = &LQPExpr{Kind: LQPExprOr, Left: combined, Right: b, Typ: Bool}
	}
	return leaf, combined, true
}

// collectPredicateChain walks a single-child chain of Predicate nodes
// down to its Scan leaf, ANDing the predicates together in encounter
// order. ok is false if the chain reaches anything but a Scan.
func collectPredicateChain(n *LQPNode) (leaf *LQPNode, conj *LQPExpr, ok bool) {
	for {
		switch n.Kind {
		case LQPScan:
			return n, conj, true
		case LQPPredicate:
			p := simplifyRedundantNotEqualZero(n.Predicate)
			if conj == nil {
				conj = p
			} else {
				conj = &LQPExpr{Kind: LQPExprAnd, Left: conj, Right: p, Typ: Bool}
			}
			if len(n.Children) != 1 {
				return nil, nil, false
			}
			n = n.Children[0]
		default:
			return nil, nil, false
		}
	}
}

func isJittableKind(k LQPNodeKind) bool {
	switch k {
	case LQPScan, LQPValidate, LQPPredicate, LQPProjection, LQPLimit, LQPUnion, LQPAggregate:
		return true
	}
	return false
}

// simplifyRedundantNotEqualZero removes a `expr != 0` wrapper that SQL
// translation commonly introduces around an already-boolean expression,
// recursively across the whole predicate tree.
func simplifyRedundantNotEqualZero(e *LQPExpr) *LQPExpr {
	if e == nil {
		return nil
	}
	e.Left = simplifyRedundantNotEqualZero(e.Left)
	e.Right = simplifyRedundantNotEqualZero(e.Right)
	e.Third = simplifyRedundantNotEqualZero(e.Third)
	if e.Kind == LQPExprNotEqual && e.Right != nil && e.Right.Kind == LQPExprLiteral &&
		!e.Right.Literal.Null && e.Right.Literal.Typ.isIntegral() && e.Right.Literal.I64 == 0 {
		return e.Left
	}
	return e
}

// translator accumulates the ReadTuples bindings and tuple-slot layout
// while lowering LQPExpr trees into ExpressionNode trees.
type translator struct {
	cfg  EngineConfig
	read *ReadTuples

	bindingIndex    map[bindingKey]int
	literalSlot     map[string]int
	paramSlot       map[ParameterID]int
	valueIDPredSlot map[string]int

	// emittedBindings is the prefix of read.Bindings already covered by
	// an emitted InsertReadValueOp (see emitPendingReaders).
	emittedBindings int

	typs     []DataType
	nullable []bool
}

type bindingKey struct {
	col        int
	useValueID bool
}

func newTranslator(cfg EngineConfig) *translator {
	return &translator{
		cfg:             cfg,
		read:            &ReadTuples{},
		bindingIndex:    make(map[bindingKey]int),
		literalSlot:     make(map[string]int),
		paramSlot:       make(map[ParameterID]int),
		valueIDPredSlot: make(map[string]int),
	}
}

func (tr *translator) allocSlot(typ DataType, nullable bool) int {
	idx := len(tr.typs)
	tr.typs = append(tr.typs, typ)
	tr.nullable = append(tr.nullable, nullable)
	return idx
}

// emitPendingReaders appends an eager InsertReadValueOp, at the current
// end of the chain (just ahead of the operator about to consume it),
// for every column binding created since the last call.
// Every jittable consumer gets its binding materialised eagerly here
// rather than tracked per-expression, since the Translator does not
// currently attempt fine-grained lazy placement.
func (tr *translator) emitPendingReaders(appendOp func(Operator)) {
	for tr.emittedBindings < len(tr.read.Bindings) {
		b := tr.read.Bindings[tr.emittedBindings]
		appendOp(NewInsertReadValueOp(tr.emittedBindings, b.Slot))
		tr.emittedBindings++
	}
}

// resolveLeaf resolves the run's bottom node into a concrete Table: a
// bare Scan's own table, or a union of each Union child's table.
func (tr *translator) resolveLeaf(leaf *LQPNode) (Table, error) {
	if leaf.Kind == LQPScan {
		if leaf.Table == nil {
			return nil, rejectf("scan node has no table")
		}
		return leaf.Table, nil
	}
	tables := make([]Table, len(leaf.Children))
	for i, ch := range leaf.Children {
		if ch.Table == nil {
			return nil, rejectf("union scan child has no table")
		}
		tables[i] = ch.Table
	}
	return newUnionTable(tables), nil
}

// bindColumn resolves (dedup) a Column reference to a tuple slot,
// registering a ColumnBinding with Read-Tuples on first use.
func (tr *translator) bindColumn(colIndex int, useValueID bool, typ DataType, nullable bool) int {
	key := bindingKey{col: colIndex, useValueID: useValueID}
	if idx, ok := tr.bindingIndex[key]; ok {
		return tr.read.Bindings[idx].Slot
	}
	slot := tr.allocSlot(typ, nullable)
	tr.bindingIndex[key] = len(tr.read.Bindings)
	tr.read.Bindings = append(tr.read.Bindings, ColumnBinding{ColumnIndex: colIndex, Slot: slot, UseValueID: useValueID})
	return slot
}

func literalKey(v Value) string {
	if v.Null {
		return "null:" + v.Typ.String()
	}
	return v.Typ.String() + ":" + valueKey(v)
}

func (tr *translator) internLiteral(v Value) int {
	key := literalKey(v)
	if slot, ok := tr.literalSlot[key]; ok {
		return slot
	}
	slot := tr.allocSlot(v.Typ, v.Null)
	tr.literalSlot[key] = slot
	tr.read.Literals = append(tr.read.Literals, LiteralInstall{Slot: slot, Value: v})
	return slot
}

func (tr *translator) internParameter(p ParameterID, typ DataType) int {
	if slot, ok := tr.paramSlot[p]; ok {
		return slot
	}
	slot := tr.allocSlot(typ, true)
	tr.paramSlot[p] = slot
	tr.read.Parameters = append(tr.read.Parameters, ParameterInstall{Slot: slot, Param: p})
	return slot
}

// isDictionaryColumn peeks the leaf table's first non-empty chunk to
// decide a column's storage encoding; a stored table's column encoding
// is assumed stable across its chunks.
func isDictionaryColumn(table Table, col int) bool {
	for i := 0; i < table.ChunkCount(); i++ {
		chunk := table.GetChunk(i)
		if chunk.Size() == 0 {
			continue
		}
		_, ok := chunk.GetSegment(col).(*DictionarySegment)
		return ok
	}
	return false
}

func flipComparison(k LQPExprKind) LQPExprKind {
	switch k {
	case LQPExprLess:
		return LQPExprGreater
	case LQPExprLessEqual:
		return LQPExprGreaterEqual
	case LQPExprGreater:
		return LQPExprLess
	case LQPExprGreaterEqual:
		return LQPExprLessEqual
	default:
		return k
	}
}

func lqpToNodeKind(k LQPExprKind) NodeKind {
	switch k {
	case LQPExprAdd:
		return NodeAddition
	case LQPExprSub:
		return NodeSubtraction
	case LQPExprMul:
		return NodeMultiplication
	case LQPExprDiv:
		return NodeDivision
	case LQPExprMod:
		return NodeModulo
	case LQPExprEqual:
		return NodeEquals
	case LQPExprNotEqual:
		return NodeNotEquals
	case LQPExprLess:
		return NodeLessThan
	case LQPExprLessEqual:
		return NodeLessThanEquals
	case LQPExprGreater:
		return NodeGreaterThan
	case LQPExprGreaterEqual:
		return NodeGreaterThanEquals
	case LQPExprAnd:
		return NodeAnd
	case LQPExprOr:
		return NodeOr
	case LQPExprNot:
		return NodeNot
	case LQPExprIsNull:
		return NodeIsNull
	case LQPExprIsNotNull:
		return NodeIsNotNull
	case LQPExprBetween:
		return NodeBetween
	}
	assertFunc(false, "unhandled LQP expression kind %d", k)
	return NodeColumn
}

func isComparisonKind(k LQPExprKind) bool {
	switch k {
	case LQPExprEqual, LQPExprNotEqual, LQPExprLess, LQPExprLessEqual, LQPExprGreater, LQPExprGreaterEqual:
		return true
	}
	return false
}

// lowerExpr translates one LQPExpr into an ExpressionNode, allocating
// tuple slots as needed and applying value-id acceleration to eligible
// comparisons.
func (tr *translator) lowerExpr(e *LQPExpr, table Table) (*ExpressionNode, error) {
	switch e.Kind {
	case LQPExprColumn:
		slot := tr.bindColumn(e.ColumnIndex, false, e.Typ, e.Nullable)
		return &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: e.Typ, Nullable: e.Nullable, Index: slot}}, nil
	case LQPExprLiteral:
		slot := tr.internLiteral(e.Literal)
		return &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: e.Literal.Typ, Nullable: e.Literal.Null, Index: slot}}, nil
	case LQPExprParameter:
		slot := tr.internParameter(e.Param, e.Typ)
		return &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: e.Typ, Nullable: true, Index: slot}}, nil
	case LQPExprIn, LQPExprLike:
		return nil, unsupportedf("expression kind %d is not jittable", e.Kind)
	case LQPExprNot, LQPExprIsNull, LQPExprIsNotNull:
		left, err := tr.lowerExpr(e.Left, table)
		if err != nil {
			return nil, err
		}
		slot := tr.allocSlot(Bool, e.Kind == LQPExprNot && left.Result.Nullable)
		return &ExpressionNode{Kind: lqpToNodeKind(e.Kind), Left: left, Result: TupleSlot{Typ: Bool, Nullable: tr.nullable[slot], Index: slot}}, nil
	case LQPExprBetween:
		x, err := tr.lowerExpr(e.Left, table)
		if err != nil {
			return nil, err
		}
		lo, err := tr.lowerExpr(e.Right, table)
		if err != nil {
			return nil, err
		}
		hi, err := tr.lowerExpr(e.Third, table)
		if err != nil {
			return nil, err
		}
		slot := tr.allocSlot(Bool, true)
		return &ExpressionNode{Kind: NodeBetween, Left: x, Right: lo, Third: hi, Result: TupleSlot{Typ: Bool, Nullable: true, Index: slot}}, nil
	case LQPExprAnd, LQPExprOr:
		left, err := tr.lowerExpr(e.Left, table)
		if err != nil {
			return nil, err
		}
		right, err := tr.lowerExpr(e.Right, table)
		if err != nil {
			return nil, err
		}
		slot := tr.allocSlot(Bool, true)
		return &ExpressionNode{Kind: lqpToNodeKind(e.Kind), Left: left, Right: right, Result: TupleSlot{Typ: Bool, Nullable: true, Index: slot}}, nil
	}

	if isComparisonKind(e.Kind) {
		if node, ok, err := tr.tryValueIDAccelerate(e, table); err != nil {
			return nil, err
		} else if ok {
			return node, nil
		}
		left, err := tr.lowerExpr(e.Left, table)
		if err != nil {
			return nil, err
		}
		right, err := tr.lowerExpr(e.Right, table)
		if err != nil {
			return nil, err
		}
		if _, ok := promote(left.Result.Typ, right.Result.Typ); !ok {
			return nil, typeMismatchf("cannot compare %s with %s", left.Result.Typ, right.Result.Typ)
		}
		slot := tr.allocSlot(Bool, true)
		return &ExpressionNode{Kind: lqpToNodeKind(e.Kind), Left: left, Right: right, Result: TupleSlot{Typ: Bool, Nullable: true, Index: slot}}, nil
	}

	// Arithmetic.
	left, err := tr.lowerExpr(e.Left, table)
	if err != nil {
		return nil, err
	}
	right, err := tr.lowerExpr(e.Right, table)
	if err != nil {
		return nil, err
	}
	resTyp, ok := promote(left.Result.Typ, right.Result.Typ)
	if !ok || !resTyp.IsNumeric() && resTyp != NullType {
		return nil, typeMismatchf("cannot apply arithmetic to %s and %s", left.Result.Typ, right.Result.Typ)
	}
	slot := tr.allocSlot(resTyp, true)
	return &ExpressionNode{Kind: lqpToNodeKind(e.Kind), Left: left, Right: right, Result: TupleSlot{Typ: resTyp, Nullable: true, Index: slot}}, nil
}

// tryValueIDAccelerate lowers a comparison in value-id space when the
// config allows it and the shape matches: one operand a
// dictionary-encoded stored-table column, the other a literal. A
// parameter operand is not accelerated; the comparison is lowered in
// value space instead.
func (tr *translator) tryValueIDAccelerate(e *LQPExpr, table Table) (*ExpressionNode, bool, error) {
	if !tr.cfg.ValueIDAccelerationEnabled {
		return nil, false, nil
	}
	kind := e.Kind
	colSide, litSide := e.Left, e.Right
	if colSide.Kind != LQPExprColumn || (litSide.Kind != LQPExprLiteral && litSide.Kind != LQPExprParameter) {
		colSide, litSide = e.Right, e.Left
		kind = flipComparison(kind)
		if colSide.Kind != LQPExprColumn || (litSide.Kind != LQPExprLiteral && litSide.Kind != LQPExprParameter) {
			return nil, false, nil
		}
	}
	if !isDictionaryColumn(table, colSide.ColumnIndex) {
		return nil, false, nil
	}

	colSlot := tr.bindColumn(colSide.ColumnIndex, true, ValueIDType, colSide.Nullable)
	colNode := &ExpressionNode{Kind: NodeColumn, valueIDMode: true, Result: TupleSlot{Typ: ValueIDType, Nullable: colSide.Nullable, Index: colSlot}}

	var lit Value
	var litKeyPrefix string
	switch litSide.Kind {
	case LQPExprLiteral:
		lit = litSide.Literal
		litKeyPrefix = "lit"
	case LQPExprParameter:
		// Parameters cannot be precomputed at translation time; the
		// value-id lookup happens against the literal actually bound
		// at before_query, so this predicate is not accelerated —
		// fall through to plain value-space comparison.
		return nil, false, nil
	}
	if lit.Typ != colSide.Typ {
		return nil, false, typeMismatchf("value-id predicate literal type %s does not match column type %s", lit.Typ, colSide.Typ)
	}

	key := fmt.Sprintf("%s:%d:%s:%d", litKeyPrefix, colSide.ColumnIndex, literalKey(lit), kind)
	litSlot, ok := tr.valueIDPredSlot[key]
	if !ok {
		litSlot = tr.allocSlot(ValueIDType, false)
		tr.valueIDPredSlot[key] = litSlot
		bindIdx := tr.bindingIndex[bindingKey{col: colSide.ColumnIndex, useValueID: true}]
		tr.read.ValueIDPreds = append(tr.read.ValueIDPreds, ValueIDPredicate{
			BindingIndex: bindIdx,
			LiteralSlot:  litSlot,
			Kind:         lqpToNodeKind(kind),
			Literal:      lit,
		})
	}
	litNode := &ExpressionNode{Kind: NodeColumn, valueIDMode: true, Result: TupleSlot{Typ: ValueIDType, Index: litSlot}}

	_, rewritten := TableOneRewrite(lqpToNodeKind(kind))
	slot := tr.allocSlot(Bool, colSide.Nullable)
	return &ExpressionNode{Kind: rewritten, Left: colNode, Right: litNode, Result: TupleSlot{Typ: Bool, Nullable: colSide.Nullable, Index: slot}}, true, nil
}

func slotTypes(slots []TupleSlot) ([]DataType, []bool) {
	typs := make([]DataType, len(slots))
	nullable := make([]bool, len(slots))
	for i, s := range slots {
		typs[i] = s.Typ
		nullable[i] = s.Nullable
	}
	return typs, nullable
}

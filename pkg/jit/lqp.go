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

// This file is the external contract the logical-query-plan layer
// builds against: the shapes the Translator (translator.go) walks,
// limited to the closed set of node kinds that are jittable, plus
// LQPOther standing in for everything else (joins, sorts, DDL) that
// always ends a jittable run.

// LQPNodeKind is the closed set of logical-plan node kinds the
// Translator understands.
type LQPNodeKind int

const (
	LQPScan LQPNodeKind = iota
	LQPValidate
	LQPPredicate
	LQPProjection
	LQPLimit
	LQPUnion
	LQPAggregate
	LQPOther
)

func (k LQPNodeKind) String() string {
	switch k {
	case LQPScan:
		return "Scan"
	case LQPValidate:
		return "Validate"
	case LQPPredicate:
		return "Predicate"
	case LQPProjection:
		return "Projection"
	case LQPLimit:
		return "Limit"
	case LQPUnion:
		return "Union"
	case LQPAggregate:
		return "Aggregate"
	default:
		return "Other"
	}
}

// LQPNode is one node of the logical plan, single-child except Union
// and the stored-table Scan leaf.
type LQPNode struct {
	Kind     LQPNodeKind
	Children []*LQPNode

	// LQPScan
	Table Table

	// LQPPredicate
	Predicate *LQPExpr

	// LQPProjection: one entry per output column; a projection that is
	// a bare Column reference is a "direct reference" candidate for
	// Write-Offsets.
	Projections []*LQPExpr

	// LQPLimit
	LimitExpr *LQPExpr

	// LQPAggregate
	GroupBys []*LQPExpr
	Aggs     []*LQPAggExpr
}

// LQPExprKind is the closed set of scalar expression kinds the
// Translator lowers into ExpressionNode, plus two kinds
// (LQPExprIn/LQPExprLike) that exist only to be recognised and
// rejected: predicates using IN, LIKE, or NOT LIKE are not jittable.
type LQPExprKind int

const (
	LQPExprColumn LQPExprKind = iota
	LQPExprLiteral
	LQPExprParameter
	LQPExprAdd
	LQPExprSub
	LQPExprMul
	LQPExprDiv
	LQPExprMod
	LQPExprEqual
	LQPExprNotEqual
	LQPExprLess
	LQPExprLessEqual
	LQPExprGreater
	LQPExprGreaterEqual
	LQPExprBetween
	LQPExprAnd
	LQPExprOr
	LQPExprNot
	LQPExprIsNull
	LQPExprIsNotNull
	LQPExprIn
	LQPExprLike
)

// LQPExpr is one node of a logical-plan scalar expression tree.
type LQPExpr struct {
	Kind  LQPExprKind
	Left  *LQPExpr
	Right *LQPExpr
	Third *LQPExpr

	Typ      DataType
	Nullable bool

	ColumnIndex int // LQPExprColumn: index into the scan's stored table

	Literal Value       // LQPExprLiteral
	Param   ParameterID // LQPExprParameter
}

// LQPAggExpr is one aggregate output column of an LQPAggregate node.
// Arg is nil for CountStar.
type LQPAggExpr struct {
	Func   AggFunc
	Arg    *LQPExpr
	Typ    DataType
	Result DataType
}

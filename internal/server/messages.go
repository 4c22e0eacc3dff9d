package server

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"

	"github.com/funvibe/vcgen/internal/vcgen"
)

// Request asks for the VCs of one module.
type Request struct {
	File   string
	Module []byte
	Uses   [][]byte
}

// Response mirrors vcgen.ModuleResult in printed form.
type Response struct {
	Module     string
	RunID      string
	Procedures []ProcedureReply
}

type ProcedureReply struct {
	Name   string
	Error  string
	Blocks []BlockReply
}

type BlockReply struct {
	Name     string
	FreeVars []string
	VCs      []VCReply
}

type VCReply struct {
	Location    string
	Detail      string
	Antecedents []string
	Consequent  string
}

// VCCount is the number of VCs over all procedures.
func (r *Response) VCCount() int {
	n := 0
	for _, p := range r.Procedures {
		for _, b := range p.Blocks {
			n += len(b.VCs)
		}
	}
	return n
}

// Failed counts the procedures that reported an error.
func (r *Response) Failed() int {
	n := 0
	for _, p := range r.Procedures {
		if p.Error != "" {
			n++
		}
	}
	return n
}

// NewResponse flattens a module result.
func NewResponse(result *vcgen.ModuleResult) *Response {
	resp := &Response{Module: result.Module}
	for _, p := range result.Procedures {
		pr := ProcedureReply{Name: p.Procedure}
		if p.Err != nil {
			pr.Error = p.Err.Error()
		}
		for _, b := range p.Blocks {
			br := BlockReply{Name: b.Name}
			for _, v := range b.FreeVars() {
				br.FreeVars = append(br.FreeVars, fmt.Sprintf("%s: %s", v.Name(), v.MathType()))
			}
			for _, vc := range b.VCs() {
				r := VCReply{Location: vc.Location.String(), Detail: vc.Detail, Consequent: vc.Consequent.String()}
				for _, a := range vc.Antecedents {
					r.Antecedents = append(r.Antecedents, a.String())
				}
				br.VCs = append(br.VCs, r)
			}
			pr.Blocks = append(pr.Blocks, br)
		}
		resp.Procedures = append(resp.Procedures, pr)
	}
	return resp
}

func requestToMessage(req *Request, md *desc.MessageDescriptor) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md)
	if err := msg.TrySetFieldByName("file", req.File); err != nil {
		return nil, err
	}
	if err := msg.TrySetFieldByName("module", req.Module); err != nil {
		return nil, err
	}
	for _, u := range req.Uses {
		if err := msg.TryAddRepeatedFieldByName("uses", u); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func requestFromMessage(msg *dynamic.Message) *Request {
	req := &Request{
		File:   stringField(msg, "file"),
		Module: bytesField(msg, "module"),
	}
	for _, u := range repeatedField(msg, "uses") {
		if b, ok := u.([]byte); ok {
			req.Uses = append(req.Uses, b)
		}
	}
	return req
}

func responseToMessage(resp *Response, md *desc.MessageDescriptor) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md)
	procMD := md.FindFieldByName("procedures").GetMessageType()
	blockMD := procMD.FindFieldByName("blocks").GetMessageType()
	vcMD := blockMD.FindFieldByName("vcs").GetMessageType()

	if err := setFields(msg, "module", resp.Module, "run_id", resp.RunID); err != nil {
		return nil, err
	}
	for _, p := range resp.Procedures {
		pm := dynamic.NewMessage(procMD)
		if err := setFields(pm, "name", p.Name, "error", p.Error); err != nil {
			return nil, err
		}
		for _, b := range p.Blocks {
			bm := dynamic.NewMessage(blockMD)
			if err := setFields(bm, "name", b.Name); err != nil {
				return nil, err
			}
			if err := addStrings(bm, "free_vars", b.FreeVars); err != nil {
				return nil, err
			}
			for _, vc := range b.VCs {
				vm := dynamic.NewMessage(vcMD)
				if err := setFields(vm, "location", vc.Location, "detail", vc.Detail, "consequent", vc.Consequent); err != nil {
					return nil, err
				}
				if err := addStrings(vm, "antecedents", vc.Antecedents); err != nil {
					return nil, err
				}
				if err := bm.TryAddRepeatedFieldByName("vcs", vm); err != nil {
					return nil, err
				}
			}
			if err := pm.TryAddRepeatedFieldByName("blocks", bm); err != nil {
				return nil, err
			}
		}
		if err := msg.TryAddRepeatedFieldByName("procedures", pm); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func responseFromMessage(msg *dynamic.Message) *Response {
	resp := &Response{Module: stringField(msg, "module"), RunID: stringField(msg, "run_id")}
	for _, p := range messageList(msg, "procedures") {
		pr := ProcedureReply{Name: stringField(p, "name"), Error: stringField(p, "error")}
		for _, b := range messageList(p, "blocks") {
			br := BlockReply{Name: stringField(b, "name"), FreeVars: stringList(b, "free_vars")}
			for _, v := range messageList(b, "vcs") {
				br.VCs = append(br.VCs, VCReply{
					Location:    stringField(v, "location"),
					Detail:      stringField(v, "detail"),
					Antecedents: stringList(v, "antecedents"),
					Consequent:  stringField(v, "consequent"),
				})
			}
			pr.Blocks = append(pr.Blocks, br)
		}
		resp.Procedures = append(resp.Procedures, pr)
	}
	return resp
}

// setFields sets name/value pairs of string fields.
func setFields(msg *dynamic.Message, kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if err := msg.TrySetFieldByName(kv[i], kv[i+1]); err != nil {
			return fmt.Errorf("field %s: %w", kv[i], err)
		}
	}
	return nil
}

func addStrings(msg *dynamic.Message, name string, vals []string) error {
	for _, v := range vals {
		if err := msg.TryAddRepeatedFieldByName(name, v); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}
	return nil
}

func stringField(msg *dynamic.Message, name string) string {
	s, _ := msg.GetFieldByName(name).(string)
	return s
}

func bytesField(msg *dynamic.Message, name string) []byte {
	b, _ := msg.GetFieldByName(name).([]byte)
	return b
}

func repeatedField(msg *dynamic.Message, name string) []interface{} {
	vals, _ := msg.GetFieldByName(name).([]interface{})
	return vals
}

func stringList(msg *dynamic.Message, name string) []string {
	var out []string
	for _, v := range repeatedField(msg, name) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func messageList(msg *dynamic.Message, name string) []*dynamic.Message {
	var out []*dynamic.Message
	for _, v := range repeatedField(msg, name) {
		if m, ok := v.(*dynamic.Message); ok {
			out = append(out, m)
		}
	}
	return out
}

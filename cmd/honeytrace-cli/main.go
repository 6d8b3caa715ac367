package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"honeytrace/crypto/merkle"
)

var rpcEndpoint = defaultRPCEndpoint() // Defaults to localhost, can be overridden via RPC_URL or --rpc flag
var rpcAuthToken = os.Getenv("HONEYTRACE_RPC_TOKEN")

func main() {
	args := os.Args[1:]
	var err error
	rpcEndpoint = defaultRPCEndpoint()
	args, err = applyGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(args) < 1 {
		printUsage()
		return
	}

	command := args[0]
	switch command {
	case "generate-codes":
		if len(args) < 2 {
			fmt.Println("Error: Please provide the number of codes to generate.")
			printUsage()
			return
		}
		count, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil || count == 0 {
			fmt.Println("Error: Invalid code count.")
			return
		}
		outFile := ""
		if len(args) > 2 {
			outFile = args[2]
		}
		generateCodes(uint(count), outFile)
	case "owner":
		callAndPrint("access_owner", struct{}{}, false)
	case "is-admin":
		if len(args) < 2 {
			fmt.Println("Error: Please provide an address.")
			return
		}
		callAndPrint("access_isAdmin", map[string]string{"address": args[1]}, false)
	case "add-admin":
		if len(args) < 3 {
			fmt.Println("Error: Please provide the owner address and the new admin address.")
			return
		}
		callAndPrint("access_addAdmin", map[string]string{"caller": args[1], "admin": args[2]}, true)
	case "remove-admin":
		if len(args) < 3 {
			fmt.Println("Error: Please provide the owner address and the admin address.")
			return
		}
		callAndPrint("access_removeAdmin", map[string]string{"caller": args[1], "admin": args[2]}, true)
	case "transfer-ownership":
		if len(args) < 3 {
			fmt.Println("Error: Please provide the current owner and the new owner address.")
			return
		}
		callAndPrint("access_transferOwnership", map[string]string{"caller": args[1], "newOwner": args[2]}, true)
	case "register-producer":
		if len(args) < 5 {
			fmt.Println("Error: Please provide address, name, location and registration number.")
			return
		}
		params := map[string]string{
			"caller":             args[1],
			"name":               args[2],
			"location":           args[3],
			"registrationNumber": args[4],
		}
		if len(args) > 5 {
			params["metadataRef"] = args[5]
		}
		callAndPrint("producer_register", params, true)
	case "authorize-producer":
		if len(args) < 4 {
			fmt.Println("Error: Please provide the admin address, the producer address and true/false.")
			return
		}
		enabled, err := strconv.ParseBool(args[3])
		if err != nil {
			fmt.Println("Error: Expected true or false.")
			return
		}
		callAndPrint("producer_setAuthorization", map[string]interface{}{
			"caller": args[1], "producer": args[2], "enabled": enabled,
		}, true)
	case "get-producer":
		if len(args) < 2 {
			fmt.Println("Error: Please provide an address.")
			return
		}
		callAndPrint("producer_get", map[string]string{"address": args[1]}, false)
	case "create-batch":
		if len(args) < 5 {
			fmt.Println("Error: Please provide producer address, label, supply and a codes file.")
			return
		}
		createBatch(args[1], args[2], args[3], args[4], args[5:])
	case "get-batch":
		if len(args) < 2 {
			fmt.Println("Error: Please provide a batch id.")
			return
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			fmt.Println("Error: Invalid batch id.")
			return
		}
		callAndPrint("batch_get", map[string]uint64{"batchId": id}, false)
	case "balance":
		if len(args) < 3 {
			fmt.Println("Error: Please provide an address and a batch id.")
			return
		}
		class, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			fmt.Println("Error: Invalid batch id.")
			return
		}
		callAndPrint("token_balanceOf", map[string]interface{}{"address": args[1], "class": class}, false)
	case "approve-operator":
		if len(args) < 4 {
			fmt.Println("Error: Please provide the holder address, the operator address and true/false.")
			return
		}
		enabled, err := strconv.ParseBool(args[3])
		if err != nil {
			fmt.Println("Error: Expected true or false.")
			return
		}
		callAndPrint("token_setApprovalForAll", map[string]interface{}{
			"holder": args[1], "operator": args[2], "enabled": enabled,
		}, true)
	case "claim":
		if len(args) < 5 {
			fmt.Println("Error: Please provide consumer address, batch id, secret code and the codes file.")
			return
		}
		claim(args[1], args[2], args[3], args[4])
	case "code-claimed":
		if len(args) < 3 {
			fmt.Println("Error: Please provide a batch id and a secret code.")
			return
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			fmt.Println("Error: Invalid batch id.")
			return
		}
		callAndPrint("claim_isCodeClaimed", map[string]interface{}{"batchId": id, "secretCode": args[2]}, false)
	case "add-review":
		if len(args) < 4 {
			fmt.Println("Error: Please provide reviewer address, batch id and rating.")
			return
		}
		addReview(args[1], args[2], args[3], args[4:])
	case "reviews":
		if len(args) < 2 {
			fmt.Println("Error: Please provide a batch id.")
			return
		}
		listReviews(args[1], args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func createBatch(producerAddr, label, supplyArg, codesFile string, rest []string) {
	supply, err := strconv.ParseUint(supplyArg, 10, 64)
	if err != nil {
		fmt.Println("Error: Invalid supply.")
		return
	}
	bundle, err := loadBundle(codesFile)
	if err != nil {
		fmt.Printf("Error loading codes file: %v\n", err)
		return
	}
	params := map[string]interface{}{
		"caller":         producerAddr,
		"label":          label,
		"supply":         supply,
		"commitmentRoot": bundle.Root,
	}
	if len(rest) > 0 {
		params["metadataRef"] = rest[0]
	}
	callAndPrint("batch_create", params, true)
}

func claim(consumer, batchArg, code, codesFile string) {
	batchID, err := strconv.ParseUint(batchArg, 10, 64)
	if err != nil {
		fmt.Println("Error: Invalid batch id.")
		return
	}
	bundle, err := loadBundle(codesFile)
	if err != nil {
		fmt.Printf("Error loading codes file: %v\n", err)
		return
	}
	var proof []string
	found := false
	for _, entry := range bundle.Codes {
		if entry.Code == code {
			proof = entry.Proof
			found = true
			break
		}
	}
	if !found {
		fmt.Printf("Error: code %s not present in %s\n", code, codesFile)
		return
	}
	callAndPrint("claim_redeem", map[string]interface{}{
		"caller":     consumer,
		"batchId":    batchID,
		"secretCode": code,
		"proof":      proof,
	}, true)
}

func addReview(reviewer, batchArg, ratingArg string, rest []string) {
	batchID, err := strconv.ParseUint(batchArg, 10, 64)
	if err != nil {
		fmt.Println("Error: Invalid batch id.")
		return
	}
	rating, err := strconv.ParseUint(ratingArg, 10, 8)
	if err != nil || rating > 5 {
		fmt.Println("Error: Rating must be between 0 and 5.")
		return
	}
	params := map[string]interface{}{
		"caller":  reviewer,
		"batchId": batchID,
		"rating":  rating,
	}
	if len(rest) > 0 {
		params["metadataRef"] = rest[0]
	}
	callAndPrint("review_add", params, true)
}

func listReviews(batchArg string, rest []string) {
	batchID, err := strconv.ParseUint(batchArg, 10, 64)
	if err != nil {
		fmt.Println("Error: Invalid batch id.")
		return
	}
	params := map[string]interface{}{"batchId": batchID}
	if len(rest) > 0 {
		offset, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			fmt.Println("Error: Invalid offset.")
			return
		}
		params["offset"] = offset
	}
	if len(rest) > 1 {
		limit, err := strconv.ParseUint(rest[1], 10, 64)
		if err != nil {
			fmt.Println("Error: Invalid limit.")
			return
		}
		params["limit"] = limit
	}
	callAndPrint("review_list", params, false)
}

// codeBundle is the JSON layout generate-codes writes and create-batch/claim
// read back. The secret codes never leave the operator's machine except as
// printed labels; only the root is published on batch creation.
type codeBundle struct {
	Root  string      `json:"root"`
	Count int         `json:"count"`
	Codes []codeEntry `json:"codes"`
}

type codeEntry struct {
	Code  string   `json:"code"`
	Leaf  string   `json:"leaf"`
	Index int      `json:"index"`
	Proof []string `json:"proof"`
}

// newSecretCode mints a human-readable claim code. The timestamp keeps codes
// from different print runs visually distinct; the random suffix carries the
// actual entropy.
func newSecretCode() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("BEE-%d-%s", time.Now().UnixMilli(), strings.ToUpper(hex.EncodeToString(buf[:]))), nil
}

func generateCodes(count uint, outFile string) {
	codes := make([]string, 0, count)
	for i := uint(0); i < count; i++ {
		code, err := newSecretCode()
		if err != nil {
			fmt.Printf("Error generating codes: %v\n", err)
			return
		}
		codes = append(codes, code)
	}
	leaves := make([]common.Hash, 0, len(codes))
	for _, code := range codes {
		leaves = append(leaves, merkle.HashCode(code))
	}
	tree, err := merkle.NewTree(leaves)
	if err != nil {
		fmt.Printf("Error building commitment tree: %v\n", err)
		return
	}
	bundle := codeBundle{Root: tree.Root().Hex(), Count: len(codes)}
	for i, code := range codes {
		proof, err := tree.Proof(i)
		if err != nil {
			fmt.Printf("Error deriving proof for code %d: %v\n", i, err)
			return
		}
		hexProof := make([]string, 0, len(proof))
		for _, node := range proof {
			hexProof = append(hexProof, node.Hex())
		}
		bundle.Codes = append(bundle.Codes, codeEntry{
			Code:  code,
			Leaf:  leaves[i].Hex(),
			Index: i,
			Proof: hexProof,
		})
	}
	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding bundle: %v\n", err)
		return
	}
	if outFile == "" {
		fmt.Println(string(payload))
		return
	}
	if err := os.WriteFile(outFile, payload, 0o600); err != nil {
		fmt.Printf("Error writing %s: %v\n", outFile, err)
		return
	}
	fmt.Printf("Wrote %d codes to %s (root %s)\n", len(codes), outFile, bundle.Root)
}

func loadBundle(path string) (*codeBundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bundle codeBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if bundle.Root == "" {
		return nil, fmt.Errorf("%s carries no commitment root", path)
	}
	return &bundle, nil
}

func callAndPrint(method string, params interface{}, requireAuth bool) {
	result, err := callRPC(method, params, requireAuth)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		fmt.Println(string(result))
		return
	}
	fmt.Println(pretty.String())
}

func callRPC(method string, param interface{}, requireAuth bool) (json.RawMessage, error) {
	payload := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if param != nil {
		payload["params"] = []interface{}{param}
	} else {
		payload["params"] = []interface{}{}
	}
	body, _ := json.Marshal(payload)
	resp, err := doRPCRequest(body, requireAuth)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    any    `json:"data"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response from node")
	}
	if rpcResp.Error != nil {
		if rpcResp.Error.Data != nil {
			return nil, fmt.Errorf("error from node: %s (%v)", rpcResp.Error.Message, rpcResp.Error.Data)
		}
		return nil, fmt.Errorf("error from node: %s", rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

func doRPCRequest(payload []byte, requireAuth bool) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, rpcEndpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if requireAuth && rpcAuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(rpcAuthToken))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", rpcEndpoint, err)
	}
	return resp, nil
}

func defaultRPCEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("RPC_URL")); v != "" {
		return v
	}
	return "http://localhost:8651/rpc"
}

func applyGlobalFlags(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--rpc" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --rpc")
			}
			rpcEndpoint = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--rpc=") {
			rpcEndpoint = strings.TrimPrefix(arg, "--rpc=")
			continue
		}
		out = append(out, arg)
	}
	return out, nil
}

func printUsage() {
	fmt.Println("Usage: honeytrace-cli <command> [arguments]")
	fmt.Println()
	fmt.Println("Mutating commands read HONEYTRACE_RPC_TOKEN for the bearer token when the node requires one.")
	fmt.Println("Commands:")
	fmt.Println("  generate-codes <count> [out_file]                       - Generates secret codes, their commitment root and proofs")
	fmt.Println("  owner                                                   - Prints the ledger owner")
	fmt.Println("  is-admin <address>                                      - Checks whether an address holds admin rights")
	fmt.Println("  add-admin <owner> <admin>                               - Grants admin rights")
	fmt.Println("  remove-admin <owner> <admin>                            - Revokes admin rights")
	fmt.Println("  transfer-ownership <owner> <new_owner>                  - Moves the owner role")
	fmt.Println("  register-producer <addr> <name> <location> <reg_no> [meta] - Registers a producer profile")
	fmt.Println("  authorize-producer <admin> <producer> <true|false>      - Toggles producer authorization")
	fmt.Println("  get-producer <address>                                  - Prints a producer profile")
	fmt.Println("  create-batch <producer> <label> <supply> <codes_file> [meta] - Creates a batch committed to the codes file's root")
	fmt.Println("  get-batch <batch_id>                                    - Prints a batch record")
	fmt.Println("  balance <address> <batch_id>                            - Prints a token balance")
	fmt.Println("  approve-operator <holder> <operator> <true|false>       - Toggles approval-for-all")
	fmt.Println("  claim <consumer> <batch_id> <code> <codes_file>         - Redeems a secret code using the stored proof")
	fmt.Println("  code-claimed <batch_id> <code>                          - Checks whether a code was redeemed")
	fmt.Println("  add-review <reviewer> <batch_id> <rating> [meta]        - Posts a review for a held batch")
	fmt.Println("  reviews <batch_id> [offset] [limit]                     - Lists reviews for a batch")
}

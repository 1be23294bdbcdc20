// Command dncpctl is a thin HTTP client for dncpd's control API: status,
// node/peer listing, and TLV publish/unpublish.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/shurlinet/dncp/internal/termcolor"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8808", "dncpd control API base URL")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	var err error
	switch args[0] {
	case "status":
		err = get(client, *addr+"/v1/status")
	case "nodes":
		err = get(client, *addr+"/v1/nodes")
	case "peers":
		err = get(client, *addr+"/v1/peers")
	case "publish":
		err = publish(client, *addr, args[1:])
	case "unpublish":
		err = unpublish(client, *addr, args[1:])
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		termcolor.Red("dncpctl: %v", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: dncpctl [-addr http://host:port] <command> [args]

Commands:
  status                    print this daemon's status
  nodes                     list known nodes
  peers                     list endpoints and their peers
  publish <type> <hex>      publish a TLV (type is decimal, payload is hex)
  unpublish <type> <hex>    withdraw a previously published TLV`)
}

func get(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func publish(client *http.Client, addr string, args []string) error {
	req, err := buildTLVRequest(args)
	if err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := client.Post(addr+"/v1/publish", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func unpublish(client *http.Client, addr string, args []string) error {
	req, err := buildTLVRequest(args)
	if err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequest(http.MethodDelete, addr+"/v1/publish", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

type tlvRequest struct {
	Type    uint16 `json:"type"`
	Payload []byte `json:"payload"`
}

func buildTLVRequest(args []string) (tlvRequest, error) {
	if len(args) < 1 {
		return tlvRequest{}, fmt.Errorf("usage: publish|unpublish <type> [hex-payload]")
	}
	typ, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return tlvRequest{}, fmt.Errorf("parse type %q: %w", args[0], err)
	}
	var payload []byte
	if len(args) > 1 {
		payload, err = hex.DecodeString(args[1])
		if err != nil {
			return tlvRequest{}, fmt.Errorf("parse payload %q: %w", args[1], err)
		}
	}
	return tlvRequest{Type: uint16(typ), Payload: payload}, nil
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(pretty.String())
	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	termcolor.Faint("(%s)\n", resp.Status)
	return nil
}
